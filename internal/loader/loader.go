// Package loader wraps the source-language front end: it reads files,
// parses them into syntax trees, and exposes a type oracle over the parsed
// declarations. Later stages treat its output as opaque and correct.
package loader

import (
	"fmt"
	"path/filepath"

	"strait/internal/diag"
	"strait/internal/parser"
	"strait/internal/source"
	"strait/internal/tsast"
)

// ParsedFile is one parsed source module.
type ParsedFile struct {
	// Path is the absolute, slash-normalized path.
	Path   string
	FileID source.FileID
	Tree   *tsast.Node
}

// Loader parses files on demand and caches the result per path.
type Loader struct {
	fileSet  *source.FileSet
	reporter diag.Reporter
	parsed   map[string]*ParsedFile
}

func New(fileSet *source.FileSet, reporter diag.Reporter) *Loader {
	return &Loader{
		fileSet:  fileSet,
		reporter: reporter,
		parsed:   make(map[string]*ParsedFile),
	}
}

// FileSet exposes the underlying file set for span resolution.
func (l *Loader) FileSet() *source.FileSet {
	return l.fileSet
}

// Parse loads and parses one file. Repeated calls for the same path return
// the cached tree.
func (l *Loader) Parse(path string) (*ParsedFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	key := filepath.ToSlash(abs)
	if pf, ok := l.parsed[key]; ok {
		return pf, nil
	}

	id, err := l.fileSet.Load(abs)
	if err != nil {
		return nil, err
	}
	tree := parser.ParseFile(l.fileSet.Get(id), l.reporter)
	pf := &ParsedFile{Path: key, FileID: id, Tree: tree}
	l.parsed[key] = pf
	return pf, nil
}

// Oracle builds a type oracle over everything parsed so far.
func (l *Loader) Oracle() *TreeOracle {
	files := make([]*ParsedFile, 0, len(l.parsed))
	for _, pf := range l.parsed {
		files = append(files, pf)
	}
	return NewTreeOracle(files)
}

// AddVirtual registers an in-memory file, mainly for tests.
func (l *Loader) AddVirtual(path string, content []byte) *ParsedFile {
	key := filepath.ToSlash(path)
	id := l.fileSet.AddVirtual(key, content)
	tree := parser.ParseFile(l.fileSet.Get(id), l.reporter)
	pf := &ParsedFile{Path: key, FileID: id, Tree: tree}
	l.parsed[key] = pf
	return pf
}
