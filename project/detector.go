package project

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/modfile"
)

// Detector walks up from a scanned root looking for build-system marker
// files, in priority order, to identify the project it belongs to.
type Detector struct {
	markers []string
}

// New creates a Detector recognizing the build systems a C/C++ tree (and
// its surrounding tooling) plausibly carries.
func New() *Detector {
	return &Detector{
		markers: []string{
			"CMakeLists.txt",
			"meson.build",
			"configure.ac",
			"Makefile",
			"go.mod", // code-generation / build tooling living alongside the C/C++ tree
			".git",
		},
	}
}

// Detect identifies the project root containing dir and returns what it
// could learn about it. It fails only when dir cannot be made absolute; an
// undetected project degrades to Kind "unknown" rooted at dir.
func (d *Detector) Detect(dir string) (*Info, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	root, marker := d.findRoot(absDir)
	if root == "" {
		return &Info{Kind: "unknown", RootPath: absDir, Name: filepath.Base(absDir)}, nil
	}

	kind := kindForMarker(marker)
	return &Info{
		Kind:     kind,
		RootPath: root,
		Name:     d.extractName(root, marker, kind),
	}, nil
}

func (d *Detector) findRoot(startDir string) (dir, marker string) {
	cur := startDir
	for {
		for _, m := range d.markers {
			if _, err := os.Stat(filepath.Join(cur, m)); err == nil {
				return cur, m
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", ""
		}
		cur = parent
	}
}

func kindForMarker(marker string) string {
	switch marker {
	case "CMakeLists.txt":
		return "cmake"
	case "meson.build":
		return "meson"
	case "configure.ac":
		return "autotools"
	case "Makefile":
		return "make"
	case "go.mod":
		return "go"
	case ".git":
		return "git"
	default:
		return "unknown"
	}
}

func (d *Detector) extractName(root, marker, kind string) string {
	switch kind {
	case "cmake":
		if name := extractCMakeProjectName(filepath.Join(root, marker)); name != "" {
			return name
		}
	case "go":
		if name := extractGoModuleName(filepath.Join(root, marker)); name != "" {
			return name
		}
	case "git":
		if name := extractGitOrigin(root); name != "" {
			return repoNameFromOrigin(name)
		}
	}
	return filepath.Base(root)
}

var cmakeProjectNameRegexp = regexp.MustCompile(`(?i)project\s*\(\s*([A-Za-z0-9_\-]+)`)

func extractCMakeProjectName(cmakeListsPath string) string {
	data, err := os.ReadFile(cmakeListsPath)
	if err != nil {
		return ""
	}
	matches := cmakeProjectNameRegexp.FindSubmatch(data)
	if len(matches) < 2 {
		return ""
	}
	return string(matches[1])
}

func extractGoModuleName(goModPath string) string {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return ""
	}
	mod, err := modfile.Parse(goModPath, data, nil)
	if err != nil || mod.Module == nil {
		return ""
	}
	return mod.Module.Mod.Path
}

func extractGitOrigin(gitRoot string) string {
	configPath := filepath.Join(gitRoot, ".git", "config")
	file, err := os.Open(configPath)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	inOrigin := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, `[remote "origin"]`) {
			inOrigin = true
			continue
		}
		if inOrigin && strings.HasPrefix(line, "url = ") {
			return strings.TrimPrefix(line, "url = ")
		}
	}
	return ""
}

func repoNameFromOrigin(origin string) string {
	origin = strings.TrimSuffix(origin, ".git")
	parts := strings.Split(origin, "/")
	if len(parts) == 0 {
		return origin
	}
	return parts[len(parts)-1]
}
