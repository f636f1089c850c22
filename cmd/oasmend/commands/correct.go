package commands

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/oasmend/extractor"
	"github.com/erraggy/oasmend/internal/cliutil"
	"github.com/erraggy/oasmend/pipeline"
)

// Output file names written by correct -o.
const (
	CorrectedYAMLFile = "corrected.yaml"
	CorrectedJSONFile = "corrected.json"
)

// errDegraded is returned when the model answered but nothing structured
// could be recovered from its answer.
var errDegraded = errors.New("model answer contained no usable document")

// CorrectFlags contains flags for the correct command
type CorrectFlags struct {
	Engine string
	Strict bool
	Events bool
	Output string
	Quiet  bool
	Format string
}

// SetupCorrectFlags creates and configures a FlagSet for the correct command.
// Returns the FlagSet and a CorrectFlags struct with bound flag variables.
func SetupCorrectFlags() (*flag.FlagSet, *CorrectFlags) {
	fs := flag.NewFlagSet("correct", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := &CorrectFlags{}

	fs.StringVar(&flags.Engine, "engine", "", "validation engine: oastools or kin-openapi (default from OASMEND_ENGINE)")
	fs.BoolVar(&flags.Strict, "strict", false, "enable stricter validation beyond spec requirements")
	fs.BoolVar(&flags.Events, "events", false, "print progress events as JSON lines to stderr")
	fs.StringVar(&flags.Output, "o", "", "directory to write corrected.yaml and corrected.json to")
	fs.StringVar(&flags.Output, "output", "", "directory to write corrected.yaml and corrected.json to")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no report on stderr")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no report on stderr")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasmend correct [flags] <file|->\n\n")
		Writef(fs.Output(), "Validate an OpenAPI document and, if it is invalid, ask the configured\n")
		Writef(fs.Output(), "model for a corrected version.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nOutput:\n")
		Writef(fs.Output(), "  text (default)  Corrected YAML on stdout, report on stderr\n")
		Writef(fs.Output(), "  json, yaml      The full result record on stdout\n")
		Writef(fs.Output(), "\nEnvironment:\n")
		Writef(fs.Output(), "  OASMEND_API_KEY   API key for the model endpoint (also GROQ_API_KEY, OPENAI_API_KEY)\n")
		Writef(fs.Output(), "  OASMEND_BASE_URL  OpenAI-compatible endpoint\n")
		Writef(fs.Output(), "  OASMEND_MODEL     Model name\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasmend correct broken.yaml > fixed.yaml\n")
		Writef(fs.Output(), "  oasmend correct -o out/ broken.json\n")
		Writef(fs.Output(), "  oasmend correct --events --format json broken.yaml | jq '.explanations'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Document was valid, or a correction was produced\n")
		Writef(fs.Output(), "  1    No correction could be produced, or the command failed\n")
	}

	return fs, flags
}

// correctReport is the structured output of the correct command.
type correctReport struct {
	Valid        bool              `json:"valid" yaml:"valid"`
	Errors       []string          `json:"errors" yaml:"errors"`
	Corrected    *extractor.Result `json:"corrected,omitempty" yaml:"corrected,omitempty"`
	Explanations []string          `json:"explanations" yaml:"explanations"`
	Degraded     bool              `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// HandleCorrect executes the correct command
func HandleCorrect(ctx context.Context, args []string) error {
	fs, flags := SetupCorrectFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("correct command requires exactly one file path or '-' for stdin")
	}
	specPath := fs.Arg(0)

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg := loadConfig()
	applyCheckFlags(cfg, flags.Engine, flags.Strict)
	logger := commandLogger(cfg)

	opts, err := cfg.PipelineOptions(logger)
	if err != nil {
		return err
	}
	if flags.Events {
		opts = append(opts, pipeline.WithProgress(printEvent))
	}

	text, err := cliutil.ReadSpec(specPath, stdin, cfg.MaxInlineSize)
	if err != nil {
		return err
	}

	model, err := newModel(cfg)
	if err != nil {
		return err
	}
	p, err := pipeline.New(model, opts...)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, text)
	if err != nil {
		return err
	}

	report := correctReport{
		Valid:        result.Valid,
		Errors:       result.Errors,
		Corrected:    result.Corrected,
		Explanations: result.Explanations,
		Degraded:     result.Corrected != nil && result.Corrected.Degraded(),
	}

	if flags.Output != "" && report.Corrected != nil && !report.Degraded {
		written, err := cliutil.WriteFiles(flags.Output, []string{CorrectedYAMLFile, CorrectedJSONFile}, map[string]string{
			CorrectedYAMLFile: report.Corrected.YAML,
			CorrectedJSONFile: report.Corrected.JSON,
		})
		if err != nil {
			return err
		}
		for _, path := range written {
			logger.Info("wrote corrected document", "path", path)
		}
	}

	if flags.Format != FormatText {
		if err := OutputStructured(stdout, report, flags.Format); err != nil {
			return err
		}
	} else {
		reportCorrection(specPath, flags, report)
	}

	if report.Degraded {
		return errDegraded
	}
	return nil
}

// reportCorrection writes the text-format outcome: the corrected YAML on
// stdout (unless written to a directory) and a summary on stderr.
func reportCorrection(specPath string, flags *CorrectFlags, report correctReport) {
	if report.Valid {
		if !flags.Quiet {
			Writef(stderr, "Specification: %s\n", cliutil.DisplayPath(specPath))
			Writef(stderr, "✓ Document is valid; no correction needed\n")
		}
		return
	}

	if !flags.Quiet {
		Writef(stderr, "Specification: %s\n", cliutil.DisplayPath(specPath))
		Writef(stderr, "Errors (%d):\n", len(report.Errors))
		printFindings(stderr, report.Errors)
	}

	if report.Degraded {
		Writef(stderr, "\n✗ The model did not return a usable correction. Raw response:\n\n%s\n", report.Corrected.RawResponse)
		return
	}

	if !flags.Quiet {
		printExplanations(stderr, report.Explanations)
		if report.Corrected.YAML == "" && report.Corrected.JSON == "" {
			Writef(stderr, "\nThe model returned explanations but no corrected document.\n")
		}
	}
	if flags.Output == "" && report.Corrected.YAML != "" {
		Writef(stdout, "%s", report.Corrected.YAML)
	}
}

// printEvent writes one progress event as a JSON line on stderr.
func printEvent(e pipeline.Event) {
	line, err := json.Marshal(e)
	if err != nil {
		Writef(stderr, "{\"step\":%q,\"error\":%q}\n", e.Step, err.Error())
		return
	}
	Writef(stderr, "%s\n", line)
}
