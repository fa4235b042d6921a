package fsindex

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
)

// DefaultExtensions are the recognized C/C++ source/header extensions.
var DefaultExtensions = []string{".c", ".cc", ".cpp", ".cxx", ".h", ".hpp"}

// DefaultExcludes are exclusion substrings applied against an entry's path.
var DefaultExcludes = []string{"/build", string(os.PathSeparator) + ".git", "/tools/"}

// Scanner walks a directory tree and produces an Index of every eligible
// C/C++ source/header file, preserving parent/child containment.
type Scanner struct {
	baseDir    string
	fs         afs.Service
	extensions []string
	excludes   []string
	logger     *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExtensions overrides the recognized file extensions.
func WithExtensions(exts ...string) Option {
	return func(s *Scanner) { s.extensions = exts }
}

// WithExcludes overrides the exclusion substrings.
func WithExcludes(excludes ...string) Option {
	return func(s *Scanner) { s.excludes = excludes }
}

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithService overrides the afs.Service used to walk the tree (afs.New() by
// default).
func WithService(service afs.Service) Option {
	return func(s *Scanner) { s.fs = service }
}

// New creates a Scanner rooted at baseDir.
func New(baseDir string, opts ...Option) *Scanner {
	s := &Scanner{
		baseDir:    baseDir,
		fs:         afs.New(),
		extensions: DefaultExtensions,
		excludes:   DefaultExcludes,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rawNode is a discovered-but-not-yet-numbered entry.
type rawNode struct {
	name       string
	fullPath   string
	parentPath string
	isDir      bool
}

// eligible reports whether an entry should be indexed (and, for
// directories, descended into).
func (s *Scanner) eligible(name, fullPath string, isDir bool) bool {
	for _, exclude := range s.excludes {
		if strings.Contains(fullPath, exclude) {
			return false
		}
	}
	if isDir {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Scan enumerates the tree rooted at baseDir and returns the resulting
// Index. Unreadable subdirectories are logged and skipped; an I/O failure
// reading the root itself is fatal.
func (s *Scanner) Scan(ctx context.Context) (*Index, error) {
	absRoot, err := filepath.Abs(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("fsindex: resolve base dir %q: %w", s.baseDir, err)
	}
	canonicalRoot, err := canonicalize(absRoot)
	if err != nil {
		return nil, fmt.Errorf("fsindex: scan root %q: %w", absRoot, err)
	}

	nodes := []rawNode{{name: filepath.Base(canonicalRoot), fullPath: canonicalRoot, parentPath: "", isDir: true}}
	byParent := map[string][]rawNode{}

	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		parentDir := url.Join(baseURL, parent)
		fullPath := url.Join(parentDir, info.Name())
		canonicalPath, cErr := canonicalize(localPath(fullPath))
		if cErr != nil {
			s.logger.Warn("scan: skipping unresolvable path", zap.String("path", fullPath), zap.Error(cErr))
			return false, nil
		}
		if !s.eligible(info.Name(), canonicalPath, info.IsDir()) {
			return false, nil
		}
		canonicalParent, _ := canonicalize(localPath(parentDir))
		if canonicalParent == "" {
			canonicalParent = canonicalRoot
		}
		byParent[canonicalParent] = append(byParent[canonicalParent], rawNode{
			name:       info.Name(),
			fullPath:   canonicalPath,
			parentPath: canonicalParent,
			isDir:      info.IsDir(),
		})
		return true, nil
	}

	if err := s.fs.Walk(ctx, absRoot, visitor); err != nil {
		return nil, fmt.Errorf("fsindex: walk %q: %w", absRoot, err)
	}

	idx := &Index{byID: map[int]*Entry{}, byPath: map[string]*Entry{}}
	counter := 0
	root := &Entry{ID: counter, Name: nodes[0].name, FullPath: canonicalRoot, IsDir: true}
	idx.byID[root.ID] = root
	idx.byPath[root.FullPath] = root
	counter++

	// Assign ids in deterministic preorder, sorting siblings by name, so the
	// same tree always produces the same ids across runs.
	var walk func(parent *Entry)
	walk = func(parent *Entry) {
		children := byParent[parent.FullPath]
		sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })
		for _, child := range children {
			entry := &Entry{ID: counter, Name: child.name, FullPath: child.fullPath, IsDir: child.isDir}
			counter++
			idx.byID[entry.ID] = entry
			idx.byPath[entry.FullPath] = entry
			parent.Children = append(parent.Children, entry)
			if entry.IsDir {
				walk(entry)
			}
		}
	}
	walk(root)
	idx.Root = root
	return idx, nil
}

// localPath strips a file:// scheme, if present, from an afs URL so it can
// be passed to os/filepath functions.
func localPath(u string) string {
	return strings.TrimPrefix(u, "file://")
}

// canonicalize resolves symlinks and normalizes path, falling back to the
// cleaned absolute path if the filesystem entry cannot be stat'ed (e.g. it
// vanished between listing and resolution).
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return filepath.Clean(path), nil
	}
	return resolved, nil
}

// Canonicalize exposes the scanner's path-canonicalization rule so other
// packages (the diagram Binder, the code dependency resolver) compute fs-ids
// for arbitrary paths the same way the scan did.
func Canonicalize(path string) (string, error) {
	return canonicalize(path)
}
