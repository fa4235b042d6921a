package codedep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/viant/archconform/fsindex"
)

// parsedFile caches a file's tree-sitter parse across the definition and
// relation passes, so a translation unit's own source is parsed exactly
// once even though both passes need it.
type parsedFile struct {
	tree *sitter.Tree
	src  []byte
	path string
}

// TUParser resolves cross-file dependencies for one or more translation
// units against a project-wide symbol table. A single TUParser is built
// once per Aggregator (in NewAggregator) and its symbol table is shared read-only across
// worker goroutines; there is no other shared mutable state.
type TUParser struct {
	idx            *fsindex.Index
	logger         *zap.Logger
	systemIncludes []string
	symbols        *SymbolTable
	files          map[int]*parsedFile
}

// Option configures a TUParser.
type Option func(*TUParser)

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(p *TUParser) { p.logger = logger }
}

// WithSystemIncludes overrides the fixed -isystem directory list used to
// recognize already-resolved system headers.
func WithSystemIncludes(dirs ...string) Option {
	return func(p *TUParser) { p.systemIncludes = dirs }
}

// NewTUParser creates a parser over idx. BuildSymbolTable must be called
// once before Parse.
func NewTUParser(idx *fsindex.Index, opts ...Option) *TUParser {
	p := &TUParser{
		idx:            idx,
		logger:         zap.NewNop(),
		systemIncludes: DefaultSystemIncludes,
		symbols:        newSymbolTable(),
		files:          map[int]*parsedFile{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildSymbolTable runs the definition pass: every indexed, non-directory
// entry is parsed once and scanned for symbols it defines. It is run
// single-threaded, ahead of any call to Parse, building the shared,
// thereafter read-only table the relation pass resolves references against.
func (p *TUParser) BuildSymbolTable(ctx context.Context) error {
	for _, entry := range p.idx.All() {
		if entry.IsDir {
			continue
		}
		pf, err := p.parseFile(ctx, entry.ID, entry.FullPath)
		if err != nil {
			p.logger.Warn("codedep: skipping unparsable file", zap.String("path", entry.FullPath), zap.Error(err))
			continue
		}
		p.collectDefinitions(pf.tree.RootNode(), entry.ID, pf.src)
	}
	return nil
}

// parseFile parses path and caches the result under fsID. It is only ever
// called from BuildSymbolTable, which runs single-threaded before any
// worker touches the parser, so the cache write is race-free.
func (p *TUParser) parseFile(ctx context.Context, fsID int, path string) (*parsedFile, error) {
	if pf, ok := p.files[fsID]; ok {
		return pf, nil
	}
	pf, err := parseSource(ctx, path)
	if err != nil {
		return nil, err
	}
	p.files[fsID] = pf
	return pf, nil
}

func parseSource(ctx context.Context, path string) (*parsedFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codedep: read %q: %w", path, err)
	}
	parser := sitter.NewParser()
	parser.SetLanguage(languageFor(path))
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("codedep: parse %q: %w", path, err)
	}
	return &parsedFile{tree: tree, src: src, path: path}, nil
}

// Parse implements the Translation-Unit Parser contract: given one compile
// command, return the CodeDeps it implies. Parse only reads the shared
// symbol table and fs index built ahead of the worker pool and never
// mutates the parser's cache, so it is safe to call concurrently from
// every Aggregator worker.
func (p *TUParser) Parse(ctx context.Context, cmd CompileCommand) ([]CodeDep, error) {
	absFile, err := fsindex.Canonicalize(cmd.AbsFile())
	if err != nil {
		return nil, fmt.Errorf("codedep: resolve %q: %w", cmd.AbsFile(), err)
	}
	fsID, ok := p.idx.IDByPath(absFile)
	if !ok {
		// the compile command names a file outside the scanned tree; there
		// is no source-side fs id to attribute edges to.
		p.logger.Warn("codedep: compile command file outside scanned tree", zap.String("file", absFile))
		return nil, nil
	}

	pf, ok := p.files[fsID]
	if !ok {
		// Every file the scanner indexed was already parsed by
		// BuildSymbolTable; a cache miss here means the compile command
		// names a file the scanner did not index. Parse it locally without
		// touching the shared cache.
		var parseErr error
		pf, parseErr = parseSource(ctx, absFile)
		if parseErr != nil {
			return nil, fmt.Errorf("codedep: %w", parseErr)
		}
	}

	if pf.tree.RootNode().HasError() {
		return nil, fmt.Errorf("%w: %s", ErrTUDiagnostic, pf.path)
	}

	var deps []CodeDep
	p.collectReferences(pf.tree.RootNode(), fsID, pf.src, pf.path, &deps)
	return deps, nil
}

// declaratorName unwraps pointer/array/function/init declarators down to
// the identifier actually being declared.
func declaratorName(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "identifier", "type_identifier", "field_identifier":
			return n
		case "pointer_declarator", "array_declarator", "parenthesized_declarator",
			"function_declarator", "init_declarator", "reference_declarator":
			n = n.ChildByFieldName("declarator")
		default:
			return nil
		}
	}
	return nil
}

// collectDefinitions walks n recording every file-scope symbol it defines
// into the parser's symbol table, keyed by fsID. Local variables and
// function parameters are block scope, not file scope: a function_definition
// records only its own name and never descends into its body, and
// parameter_declaration is never recursed into at all, so neither locals
// nor parameters ever reach the shared table. Without this, an identifier
// as common as "i" or "ctx" declared locally in two unrelated files would
// be recorded as if each file defined a global symbol by that name, and
// the relation pass would wire a bogus dependency between them.
func (p *TUParser) collectDefinitions(n *sitter.Node, fsID int, src []byte) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition":
		if decl := n.ChildByFieldName("declarator"); decl != nil {
			if id := declaratorName(decl); id != nil {
				p.symbols.record(id.Content(src), fsID, id.StartByte(), id.EndByte())
			}
		}
		return
	case "parameter_declaration":
		return
	case "declaration", "type_definition":
		if decl := n.ChildByFieldName("declarator"); decl != nil {
			if id := declaratorName(decl); id != nil {
				p.symbols.record(id.Content(src), fsID, id.StartByte(), id.EndByte())
			}
		}
	default:
		if field, ok := definitionFieldByNodeType[n.Type()]; ok {
			if id := n.ChildByFieldName(field); id != nil {
				p.symbols.record(id.Content(src), fsID, id.StartByte(), id.EndByte())
			}
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.collectDefinitions(n.Child(i), fsID, src)
	}
}

// collectReferences walks n, the relation pass: inclusion directives are
// resolved directly against the filesystem index, and every remaining
// reference-kind node is looked up in the shared symbol table.
func (p *TUParser) collectReferences(n *sitter.Node, fsID int, src []byte, filePath string, deps *[]CodeDep) {
	if n == nil {
		return
	}
	switch {
	case n.Type() == "preproc_include":
		p.collectInclude(n, fsID, src, filePath, deps)
	case referenceNodeTypes[n.Type()]:
		p.collectReference(n, fsID, src, filePath, deps)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.collectReferences(n.Child(i), fsID, src, filePath, deps)
	}
}

func (p *TUParser) collectInclude(n *sitter.Node, fsID int, src []byte, filePath string, deps *[]CodeDep) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		p.logger.Warn("codedep: include directive missing a path", zap.String("file", filePath))
		return
	}
	raw := strings.Trim(pathNode.Content(src), `"<>`)
	if p.isSystemPath(raw) {
		return
	}
	dstPath := filepath.Join(filepath.Dir(filePath), raw)
	canonical, err := fsindex.Canonicalize(dstPath)
	if err != nil {
		p.logger.Warn("codedep: could not resolve include", zap.String("file", filePath), zap.String("include", raw))
		return
	}
	// A destination outside the scanned tree (a system header, or a path
	// that simply does not exist) resolves to nothing here; that is a
	// silent drop, not an error.
	dstID, ok := p.idx.IDByPath(canonical)
	if !ok || dstID == fsID {
		return
	}
	*deps = append(*deps, CodeDep{
		Src: CodeRef{FSID: fsID, Node: codeNodeFromTSNode(n, filePath, "inclusion_directive", src)},
		Dst: CodeRef{FSID: dstID},
	})
}

// isSystemPath reports whether raw (an include's literal path text) already
// names a location under one of the configured -isystem directories. Such
// headers never live inside the scanned tree, so they are classified as
// system headers and skipped up front rather than failing fs-id resolution.
func (p *TUParser) isSystemPath(raw string) bool {
	if !filepath.IsAbs(raw) {
		return false
	}
	for _, dir := range p.systemIncludes {
		if strings.HasPrefix(raw, dir) {
			return true
		}
	}
	return false
}

func (p *TUParser) collectReference(n *sitter.Node, fsID int, src []byte, filePath string, deps *[]CodeDep) {
	name := n.Content(src)
	if p.symbols.isDefiningOccurrence(name, fsID, n.StartByte(), n.EndByte()) {
		return
	}
	for _, dstID := range p.symbols.filesDefining(name, fsID) {
		*deps = append(*deps, CodeDep{
			Src: CodeRef{FSID: fsID, Node: codeNodeFromTSNode(n, filePath, n.Type(), src)},
			Dst: CodeRef{FSID: dstID},
		})
	}
}

func codeNodeFromTSNode(n *sitter.Node, path, kind string, src []byte) *CodeNode {
	start, end := n.StartPoint(), n.EndPoint()
	return &CodeNode{
		FilePath:  path,
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
		Kind:      kind,
	}
}
