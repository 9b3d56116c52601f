package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jward/vigil"
)

var (
	flagRepo     string
	flagLanguage string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the checker pipeline on one file",
	Long:  "Reads the file from disk, analyzes it against the repository symbol table, and prints the resulting diagnostics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagRepo, "repo", ".", "repository root providing cross-file context")
	analyzeCmd.Flags().StringVar(&flagLanguage, "language", "", "language override: python|c (default: by extension)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	engine, err := vigil.New(flagDB)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	result, err := engine.Analyze(context.Background(), vigil.AnalyzeRequest{
		Content:  string(content),
		FilePath: args[0],
		RepoPath: flagRepo,
		Language: flagLanguage,
	})
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}

	if flagFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	printDiagnostics(result)
	return nil
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	codeColor    = color.New(color.Faint)
)

func printDiagnostics(result *vigil.AnalyzeResult) {
	if len(result.Diagnostics) == 0 {
		fmt.Printf("%s: no findings\n", result.File)
		return
	}
	for _, d := range result.Diagnostics {
		sev := warningColor
		if d.Severity == "ERROR" {
			sev = errorColor
		}
		fmt.Printf("%s:%d %s %s %s\n",
			d.File, d.Line,
			sev.Sprint(string(d.Severity)),
			codeColor.Sprintf("[%s]", d.Code),
			d.Message,
		)
	}
	fmt.Printf("%d finding(s)\n", len(result.Diagnostics))
}
