package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/erraggy/oasmend/internal/mcpserver"
)

// runServer starts the MCP server. Tests replace it.
var runServer = mcpserver.Run

// SetupMCPFlags creates the FlagSet for the mcp command. It takes no flags;
// the server is configured through the environment.
func SetupMCPFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: oasmend mcp\n\n")
		Writef(fs.Output(), "Serve the validate, correct, and generate tools over MCP on stdin/stdout.\n")
		Writef(fs.Output(), "Without an API key, correct and generate ask the connected client to\n")
		Writef(fs.Output(), "run the model through MCP sampling.\n\n")
		Writef(fs.Output(), "Environment:\n")
		Writef(fs.Output(), "  OASMEND_API_KEY            API key for the model endpoint\n")
		Writef(fs.Output(), "  OASMEND_ENGINE             Default validation engine\n")
		Writef(fs.Output(), "  OASMEND_MAX_INLINE_SIZE    Largest accepted spec in bytes\n")
		Writef(fs.Output(), "  OASMEND_ALLOW_PRIVATE_IPS  Allow spec URLs on private networks\n")
		Writef(fs.Output(), "  OASMEND_CACHE_ENABLED      Cache validation verdicts\n")
		Writef(fs.Output(), "  OASMEND_LOG_LEVEL          debug, info, warn, or error (logs go to stderr)\n")
		Writef(fs.Output(), "\nExample client configuration:\n")
		Writef(fs.Output(), "  {\"mcpServers\": {\"oasmend\": {\"command\": \"oasmend\", \"args\": [\"mcp\"]}}}\n")
	}

	return fs
}

// HandleMCP executes the mcp command
func HandleMCP(ctx context.Context, args []string) error {
	fs := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no arguments")
	}

	cfg := loadConfig()
	return runServer(ctx, cfg, commandLogger(cfg))
}
