package codedep

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSystemIncludes are the fixed -isystem directories. CompileCommand.Args
// appends them to a command's argument vector, and the TUParser treats an
// absolute include path under one of them as a system header.
var DefaultSystemIncludes = []string{
	"/usr/include",
	"/usr/include/c++/11",
	"/usr/lib/gcc/x86_64-linux-gnu/11/include",
	"/usr/lib/llvm-14/lib/clang/14.0.0/include",
}

// CompileCommand is one entry of a JSON compilation database: a directory,
// the source file it compiles, and either a shell-quoted command string or
// an already-tokenized argument vector.
type CompileCommand struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
}

// Args returns the command's tokenized argument vector, augmented with the
// fixed system include flags.
func (c CompileCommand) Args(systemIncludes []string) []string {
	var args []string
	if len(c.Arguments) > 0 {
		args = append(args, c.Arguments...)
	} else {
		args = append(args, splitCommand(c.Command)...)
	}
	for _, dir := range systemIncludes {
		args = append(args, "-isystem", dir)
	}
	return args
}

// AbsFile resolves File against Directory when File is not already absolute.
func (c CompileCommand) AbsFile() string {
	if filepath.IsAbs(c.File) {
		return c.File
	}
	return filepath.Join(c.Directory, c.File)
}

// LoadCompilationDatabase reads compile_commands.json from dir.
func LoadCompilationDatabase(dir string) ([]CompileCommand, error) {
	path := filepath.Join(dir, "compile_commands.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("codedep: load compilation database %q: %w", path, err)
	}
	var cmds []CompileCommand
	if err := json.Unmarshal(data, &cmds); err != nil {
		return nil, fmt.Errorf("codedep: parse compilation database %q: %w", path, err)
	}
	return cmds, nil
}

// splitCommand tokenizes a shell-style command string, honoring single and
// double quotes. It is a pragmatic stand-in for a full shell lexer: the
// compilation databases this tool consumes only ever quote path arguments.
func splitCommand(s string) []string {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
		inTok  bool
	)
	flush := func() {
		if inTok {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inTok = false
		}
	}
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inTok = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			inTok = true
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
