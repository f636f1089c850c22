package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/erraggy/oasmend/internal/cliutil"
	"github.com/erraggy/oasmend/pipeline"
)

// Output file names written by generate -o.
const (
	GeneratedYAMLFile = "openapi.yaml"
	GeneratedJSONFile = "openapi.json"
)

// GenerateFlags contains flags for the generate command
type GenerateFlags struct {
	Output string
	Quiet  bool
	Format string
}

// SetupGenerateFlags creates and configures a FlagSet for the generate command.
// Returns the FlagSet and a GenerateFlags struct with bound flag variables.
func SetupGenerateFlags() (*flag.FlagSet, *GenerateFlags) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := &GenerateFlags{}

	fs.StringVar(&flags.Output, "o", "", "directory to write openapi.yaml and openapi.json to")
	fs.StringVar(&flags.Output, "output", "", "directory to write openapi.yaml and openapi.json to")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no notes on stderr")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no notes on stderr")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasmend generate [flags] <description...>\n\n")
		Writef(fs.Output(), "Ask the configured model for a new OpenAPI 3.0 document matching a\n")
		Writef(fs.Output(), "plain-language description. Use '-' to read the description from stdin.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasmend generate a pet store with list and create endpoints > petstore.yaml\n")
		Writef(fs.Output(), "  oasmend generate -o api/ \"a todo service with CRUD on /todos\"\n")
		Writef(fs.Output(), "  echo 'an inventory API' | oasmend generate --format json - | jq -r .json\n")
	}

	return fs, flags
}

// generateReport is the structured output of the generate command.
type generateReport struct {
	YAML         string   `json:"yaml" yaml:"yaml"`
	JSON         string   `json:"json" yaml:"json"`
	Explanations []string `json:"explanations" yaml:"explanations"`
	RawResponse  string   `json:"raw_response" yaml:"raw_response"`
	Degraded     bool     `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}

// HandleGenerate executes the generate command
func HandleGenerate(ctx context.Context, args []string) error {
	fs, flags := SetupGenerateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("generate command requires a description")
	}

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg := loadConfig()
	logger := commandLogger(cfg)

	description := strings.Join(fs.Args(), " ")
	if fs.NArg() == 1 && fs.Arg(0) == cliutil.StdinPath {
		text, err := cliutil.ReadSpec(cliutil.StdinPath, stdin, cfg.MaxInlineSize)
		if err != nil {
			return err
		}
		description = text
	}

	opts, err := cfg.PipelineOptions(logger)
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

	result, err := p.Generate(ctx, description)
	if err != nil {
		return err
	}
	degraded := result.Degraded()

	if flags.Output != "" && !degraded {
		written, err := cliutil.WriteFiles(flags.Output, []string{GeneratedYAMLFile, GeneratedJSONFile}, map[string]string{
			GeneratedYAMLFile: result.YAML,
			GeneratedJSONFile: result.JSON,
		})
		if err != nil {
			return err
		}
		for _, path := range written {
			logger.Info("wrote generated document", "path", path)
		}
	}

	if flags.Format != FormatText {
		report := generateReport{
			YAML:         result.YAML,
			JSON:         result.JSON,
			Explanations: result.Explanations,
			RawResponse:  result.RawResponse,
			Degraded:     degraded,
		}
		if err := OutputStructured(stdout, report, flags.Format); err != nil {
			return err
		}
	} else {
		if degraded {
			Writef(stderr, "✗ The model did not return a usable document. Raw response:\n\n%s\n", result.RawResponse)
		} else {
			if !flags.Quiet {
				printExplanations(stderr, result.Explanations)
			}
			if flags.Output == "" {
				Writef(stdout, "%s", result.YAML)
			}
		}
	}

	if degraded {
		return errDegraded
	}
	return nil
}
