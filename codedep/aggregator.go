package codedep

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/viant/archconform/fsindex"
)

// Aggregator dispatches per-translation-unit parsing across a worker pool
// sized to the available CPU count.
type Aggregator struct {
	idx            *fsindex.Index
	logger         *zap.Logger
	workers        int
	systemIncludes []string
	parser         *TUParser
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers overrides the default runtime.NumCPU() worker count.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithAggregatorLogger attaches a logger to the aggregator and its parser.
func WithAggregatorLogger(logger *zap.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// WithAggregatorSystemIncludes overrides the -isystem directories used to
// classify include directives as system headers.
func WithAggregatorSystemIncludes(dirs ...string) AggregatorOption {
	return func(a *Aggregator) { a.systemIncludes = dirs }
}

// NewAggregator creates an Aggregator over idx.
func NewAggregator(idx *fsindex.Index, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		idx:            idx,
		logger:         zap.NewNop(),
		workers:        runtime.NumCPU(),
		systemIncludes: DefaultSystemIncludes,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.parser = NewTUParser(idx, WithLogger(a.logger), WithSystemIncludes(a.systemIncludes...))
	return a
}

// Run loads the compilation database at compdbDir, builds the shared symbol
// table, then fans per-command parsing out across the worker pool and
// concatenates the results. The resulting order is unspecified; the
// Matrix Conformance Engine aggregates into a commutative multiset.
func (a *Aggregator) Run(ctx context.Context, compdbDir string) ([]CodeDep, error) {
	commands, err := LoadCompilationDatabase(compdbDir)
	if err != nil {
		return nil, err
	}

	if err := a.parser.BuildSymbolTable(ctx); err != nil {
		return nil, fmt.Errorf("codedep: build symbol table: %w", err)
	}

	results := make([][]CodeDep, len(commands))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(a.workers)

	for i, cmd := range commands {
		i, cmd := i, cmd
		group.Go(func() error {
			deps, err := a.parser.Parse(gctx, cmd)
			if err != nil {
				return fmt.Errorf("codedep: parsing %q: %w", cmd.File, err)
			}
			results[i] = deps
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []CodeDep
	for _, deps := range results {
		all = append(all, deps...)
	}
	return all, nil
}
