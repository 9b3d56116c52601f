package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/vigil"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the repository symbol table",
	Long:  "Parses every recognized source file under the given root and builds the symbol table. With --db the snapshot is also persisted to SQLite.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	engine, err := vigil.New(flagDB)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	snap, err := engine.Refresh(context.Background(), targetDir)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	if flagFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"repo_path":    snap.Root,
			"symbol_count": len(snap.Symbols),
		})
	}

	fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d symbols)\n",
		snap.Root, time.Since(start).Round(time.Millisecond), len(snap.Symbols))
	if flagDB != "" {
		fmt.Fprintf(os.Stderr, "Database: %s\n", flagDB)
	}
	return nil
}
