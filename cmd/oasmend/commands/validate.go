package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/erraggy/oasmend"
	"github.com/erraggy/oasmend/checker"
	"github.com/erraggy/oasmend/internal/cliutil"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Engine string
	Strict bool
	Quiet  bool
	Format string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Engine, "engine", "", "validation engine: oastools or kin-openapi (default from OASMEND_ENGINE)")
	fs.BoolVar(&flags.Strict, "strict", false, "enable stricter validation beyond spec requirements")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only set the exit code, no report")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only set the exit code, no report")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasmend validate [flags] <file|->\n\n")
		Writef(fs.Output(), "Validate an OpenAPI document (2.0 through 3.2) from a file or stdin.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nOutput Formats:\n")
		Writef(fs.Output(), "  text (default)  Human-readable report on stderr\n")
		Writef(fs.Output(), "  json            {\"valid\": ..., \"errors\": [...]} on stdout\n")
		Writef(fs.Output(), "  yaml            The same record as YAML on stdout\n")
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  oasmend validate openapi.yaml\n")
		Writef(fs.Output(), "  oasmend validate --engine kin-openapi openapi.json\n")
		Writef(fs.Output(), "  cat openapi.yaml | oasmend validate -q -\n")
		Writef(fs.Output(), "  oasmend validate --format json openapi.yaml | jq '.errors'\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Document is valid\n")
		Writef(fs.Output(), "  1    Document is invalid, or the command failed\n")
	}

	return fs, flags
}

// HandleValidate executes the validate command
func HandleValidate(ctx context.Context, args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one file path or '-' for stdin")
	}
	specPath := fs.Arg(0)

	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	cfg := loadConfig()
	applyCheckFlags(cfg, flags.Engine, flags.Strict)
	logger := commandLogger(cfg)

	chk, err := cfg.Checker(logger)
	if err != nil {
		return err
	}

	text, err := cliutil.ReadSpec(specPath, stdin, cfg.MaxInlineSize)
	if err != nil {
		return err
	}

	start := time.Now()
	result := chk.Validate(ctx, text)
	elapsed := time.Since(start)

	if flags.Format != FormatText {
		if err := OutputStructured(stdout, result, flags.Format); err != nil {
			return err
		}
	} else if !flags.Quiet {
		reportVerdict(specPath, chk.Engine().Name(), result, elapsed)
	}

	if !result.Valid {
		return ErrInvalid
	}
	return nil
}

// reportVerdict writes the human-readable validation report to stderr.
func reportVerdict(specPath, engine string, result *checker.Result, elapsed time.Duration) {
	Writef(stderr, "OpenAPI Specification Validator\n")
	Writef(stderr, "================================\n\n")
	Writef(stderr, "oasmend version: %s\n", oasmend.Version())
	Writef(stderr, "Specification: %s\n", cliutil.DisplayPath(specPath))
	Writef(stderr, "Engine: %s\n", engine)
	Writef(stderr, "Total Time: %v\n\n", elapsed)

	if result.Valid {
		Writef(stderr, "✓ Validation passed\n")
		return
	}
	Writef(stderr, "Errors (%d):\n", len(result.Errors))
	printFindings(stderr, result.Errors)
	Writef(stderr, "\n✗ Validation failed\n")
}
