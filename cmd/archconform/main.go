// Package main implements the archconform CLI - a static architecture
// conformance checker for C/C++ codebases.
//
// This file is the entry point and command registration hub. The run
// pipeline itself lives in run.go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	pumlPath    string
	compdbDir   string
	baseDir     string
	configPath  string
	heatmapPath string
	workers     int
	verbose     bool
)

// rootCmd represents the base command; archconform has no subcommands, the
// whole pipeline runs from the root invocation.
var rootCmd = &cobra.Command{
	Use:   "archconform",
	Short: "Check a C/C++ codebase's actual dependencies against an architecture diagram",
	Long: `archconform compares the dependency edges declared permitted by a
PlantUML-style component diagram against the translation-unit dependency
graph extracted from a compilation database, and reports every concrete
source-to-source dependency the diagram does not permit.`,
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&pumlPath, "puml", "", "path to the architecture diagram (required)")
	rootCmd.Flags().StringVar(&compdbDir, "compdb", "", "directory containing compile_commands.json (required)")
	rootCmd.Flags().StringVar(&baseDir, "base-dir", ".", "root of the C/C++ tree to scan")
	rootCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVar(&heatmapPath, "heatmap", "", "optional PNG path for a dependency heatmap")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (default: CPU count)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.MarkFlagRequired("puml")
	rootCmd.MarkFlagRequired("compdb")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if ec, ok := err.(exitCoder); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitCoder lets a stage error carry the specific non-zero exit code its
// error kind maps to, per the tool's error handling table.
type exitCoder interface {
	error
	ExitCode() int
}
