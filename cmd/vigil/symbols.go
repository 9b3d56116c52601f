package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jward/vigil"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [path]",
	Short: "Print the repository symbol table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	engine, err := vigil.New(flagDB)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	snap, err := engine.Snapshot(context.Background(), targetDir)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	if flagFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{"symbols": snap.Symbols})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Kind", "Type", "File", "Line", "Scope"})
	table.SetBorder(false)
	for _, s := range snap.Symbols {
		table.Append([]string{
			s.Name,
			string(s.Kind),
			s.Type,
			s.FilePath,
			strconv.Itoa(s.Line),
			s.Scope,
		})
	}
	table.Render()
	fmt.Printf("%d symbol(s)\n", len(snap.Symbols))
	return nil
}
