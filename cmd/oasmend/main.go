package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/oasmend"
	"github.com/erraggy/oasmend/cmd/oasmend/commands"
)

// commandNames lists every command, in help order.
var commandNames = []string{"validate", "correct", "generate", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := args[0]
	var handler func(context.Context, []string) error

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("oasmend v%s\n", oasmend.Version())
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "validate":
		handler = commands.HandleValidate
	case "correct":
		handler = commands.HandleCorrect
	case "generate":
		handler = commands.HandleGenerate
	case "mcp":
		handler = commands.HandleMCP
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		return 1
	}

	if err := handler(ctx, args[1:]); err != nil {
		if !errors.Is(err, commands.ErrInvalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the command closest to input, or "" when none is
// within edit distance 2.
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`oasmend - OpenAPI validation and model-assisted correction

Usage:
  oasmend <command> [options]

Commands:
  validate    Validate an OpenAPI document
  correct     Validate a document and ask a model to correct it
  generate    Ask a model for a new OpenAPI document from a description
  mcp         Serve the tools over the Model Context Protocol (stdio)
  version     Show version information
  help        Show this help message

Examples:
  oasmend validate openapi.yaml
  oasmend validate --engine kin-openapi --format json openapi.json
  oasmend correct broken.yaml > fixed.yaml
  oasmend correct --events -o out/ broken.yaml
  oasmend generate "a pet store with list and create endpoints"
  oasmend mcp

Run 'oasmend <command> --help' for more information on a command.`)
}
