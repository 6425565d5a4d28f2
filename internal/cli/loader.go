package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/actiongraph/internal/compiler"
)

// statementExts are the file types the loader reads.
var statementExts = map[string]bool{".adl": true, ".txt": true, ".cue": true}

// Source is one statement text and where it came from.
type Source struct {
	Text string `json:"text"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// Location renders "file:line".
func (s Source) Location() string {
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// LoadResult contains the statements read from a file or directory.
type LoadResult struct {
	Statements []Source
	FileCount  int
}

// Texts returns the statement texts in load order.
func (r *LoadResult) Texts() []string {
	out := make([]string, len(r.Statements))
	for i, s := range r.Statements {
		out[i] = s.Text
	}
	return out
}

// LoadError represents an error that occurred during loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadStatements reads statements from path. A file is read on its own;
// a directory is walked for .adl, .txt and .cue files, read in path order.
//
// Plain-text files hold one statement per line. Blank lines and lines
// starting with "#" or "//" are skipped. CUE files hold a "statements"
// list; each entry must parse, so a bad CUE entry fails the load.
func LoadStatements(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindStatementFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no statement files found in %s", path)}
		}
	}

	result := &LoadResult{FileCount: len(files)}
	for _, f := range files {
		var srcs []Source
		if filepath.Ext(f) == ".cue" {
			srcs, err = loadCUE(f)
		} else {
			srcs, err = loadText(f)
		}
		if err != nil {
			return nil, err
		}
		result.Statements = append(result.Statements, srcs...)
	}
	return result, nil
}

// FindStatementFiles walks the directory and returns all statement file
// paths, sorted.
func FindStatementFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && statementExts[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func loadText(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("opening %s: %v", path, err)}
	}
	defer f.Close()

	var out []Source
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, "//") {
			continue
		}
		out = append(out, Source{Text: text, File: path, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return out, nil
}

func loadCUE(path string) ([]Source, error) {
	cfg := &load.Config{Dir: filepath.Dir(path)}
	instances := load.Instances([]string{filepath.Base(path)}, cfg)
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading %s: %v", path, inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	located, err := compiler.CompileCUE(value)
	if err != nil {
		return nil, convertCompileError(err, path)
	}

	out := make([]Source, len(located))
	for i, l := range located {
		out[i] = Source{Text: l.Statement.Text(), File: path, Line: l.Pos.Line()}
	}
	return out, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		code := ErrCodeBuildFailed
		if compileErr.Err != nil {
			code = ErrCodeStatement
		}
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// failLoad reports a load error through f.
func failLoad(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		msg := loadErr.Message
		if loadErr.Pos.IsValid() {
			msg = fmt.Sprintf("%s:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), msg)
		}
		return f.Fail(ExitCommandError, loadErr.Code, msg, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}
