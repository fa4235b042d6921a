package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viant/archconform/codedep"
	"github.com/viant/archconform/config"
	"github.com/viant/archconform/diagram"
	"github.com/viant/archconform/fsindex"
	"github.com/viant/archconform/logging"
	"github.com/viant/archconform/matrix"
	"github.com/viant/archconform/project"
)

// stageError carries the exit code an error kind maps to, so main can map
// any stage failure to a specific process exit status without a type
// switch at the call site.
type stageError struct {
	kind string
	code int
	err  error
}

func (e *stageError) Error() string { return fmt.Sprintf("%s: %v", e.kind, e.err) }
func (e *stageError) Unwrap() error { return e.err }
func (e *stageError) ExitCode() int { return e.code }

func wrapStage(kind string, code int, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{kind: kind, code: code, err: err}
}

// Exit codes for each error kind the tool's error table names. 0 is
// reserved for success, including a successful run that reports
// violations: a clean architecture is not the only successful outcome.
const (
	exitScanIO          = 2
	exitGrammarUnknown  = 3
	exitUnbound         = 4
	exitUnknownVariable = 5
	exitCompdbLoad      = 6
	exitTUDiagnostic    = 7
	exitConfig          = 8
)

// runCheck wires the scanner, diagram front end, code dependency
// aggregator and matrix conformance engine into the end-to-end pipeline
// (the Filesystem Scanner -> Diagram Parser -> Diagram Binder path and the
// Filesystem Scanner -> Translation-Unit Parser -> Code Aggregator path,
// both feeding the Matrix Conformance Engine).
func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return wrapStage("Config", exitConfig, err)
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	logger, err := logging.New(verbose)
	if err != nil {
		return wrapStage("Config", exitConfig, err)
	}
	defer logger.Sync()

	if info, err := project.New().Detect(baseDir); err == nil {
		logger.Info("detected project",
			zap.String("name", info.Name), zap.String("kind", info.Kind), zap.String("root", info.RootPath))
	}

	scanner := fsindex.New(baseDir,
		fsindex.WithLogger(logger),
		withNonEmptyExtensions(cfg.Extensions),
		withNonEmptyExcludes(cfg.Excludes),
	)
	idx, err := scanner.Scan(ctx)
	if err != nil {
		return wrapStage("ScanIO", exitScanIO, err)
	}
	logger.Info("scanned tree", zap.Int("entries", idx.Len()))

	root, rels, err := diagram.Parse(pumlPath)
	if err != nil {
		return wrapStage("GrammarUnknown", exitGrammarUnknown, err)
	}

	model, err := diagram.Bind(root, rels, idx)
	if err != nil {
		if isUnknownVariable(err) {
			return wrapStage("UnknownVariable", exitUnknownVariable, err)
		}
		return wrapStage("Unbound", exitUnbound, err)
	}
	logger.Info("bound diagram", zap.Int("allowedRules", len(model.AllowedRules)), zap.Int("fsGroups", len(model.FSGroups)))

	aggregator := codedep.NewAggregator(idx,
		codedep.WithWorkers(cfg.Workers),
		codedep.WithAggregatorLogger(logger),
		withNonEmptySystemIncludes(cfg.SystemIncludes),
	)
	deps, err := aggregator.Run(ctx, compdbDir)
	if err != nil {
		if errors.Is(err, codedep.ErrTUDiagnostic) {
			return wrapStage("TUDiagnostic", exitTUDiagnostic, err)
		}
		return wrapStage("CompdbLoad", exitCompdbLoad, err)
	}
	logger.Info("extracted dependencies", zap.Int("count", len(deps)))

	engine := matrix.Build(idx, model, deps)
	violations := engine.Violations()

	if err := matrix.WriteReports(cfg.ReportDir, idx, violations); err != nil {
		return wrapStage("ScanIO", exitScanIO, err)
	}
	if heatmapPath != "" {
		if err := matrix.WriteHeatmap(heatmapPath, idx, violations); err != nil {
			return wrapStage("ScanIO", exitScanIO, err)
		}
	}

	for _, v := range violations {
		srcPath, _ := idx.FullPath(v.Src)
		dstPath, _ := idx.FullPath(v.Dst)
		logger.Warn("unpermitted dependency",
			zap.String("src", srcPath), zap.String("dst", dstPath), zap.Int("count", v.Count))
	}
	fmt.Printf("TOTAL VIOLATIONS = %d\n", engine.TotalViolations())
	return nil
}

func isUnknownVariable(err error) bool {
	return err != nil && errors.Is(err, diagram.ErrUnknownVariable)
}

func withNonEmptyExtensions(exts []string) fsindex.Option {
	if len(exts) == 0 {
		return func(*fsindex.Scanner) {}
	}
	return fsindex.WithExtensions(exts...)
}

func withNonEmptyExcludes(excludes []string) fsindex.Option {
	if len(excludes) == 0 {
		return func(*fsindex.Scanner) {}
	}
	return fsindex.WithExcludes(excludes...)
}

func withNonEmptySystemIncludes(dirs []string) codedep.AggregatorOption {
	if len(dirs) == 0 {
		return func(*codedep.Aggregator) {}
	}
	return codedep.WithAggregatorSystemIncludes(dirs...)
}
