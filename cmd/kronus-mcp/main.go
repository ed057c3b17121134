// Kronus MCP server: exposes the journal and document store to coding
// agents over stdio. It shares the daemon's database; run it from an agent
// config, not by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/GuiArSt/kronus/internal/config"
	"github.com/GuiArSt/kronus/internal/mcpserver"
	"github.com/GuiArSt/kronus/internal/persistence"
)

func main() {
	home := flag.String("home", config.DefaultHomeDir(), "data directory shared with the kronus daemon")
	flag.Parse()

	if err := run(*home); err != nil {
		// Stdout carries the MCP protocol; diagnostics go to stderr.
		fmt.Fprintf(os.Stderr, "kronus-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(home string) error {
	cfg, err := config.Load(home)
	if err != nil {
		return err
	}

	store, err := persistence.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	return mcpserver.ServeStdio(mcpserver.New(store))
}
