package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sqlcheck/internal/model"

	"github.com/pkg/errors"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Target is a file to process together with its position in walk order.
type Target struct {
	Path string
	Seq  int
}

// FileWalker is responsible for traversing directories and feeding files to a channel
type FileWalker struct {
	Extensions map[string]struct{}
	Excludes   []string

	ignore *gitignore.GitIgnore
}

// NewFileWalker builds a walker. Excludes use .gitignore syntax.
func NewFileWalker(exts []string, excludes []string) *FileWalker {
	e := make(map[string]struct{})
	for _, ext := range exts {
		e[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &FileWalker{
		Extensions: e,
		Excludes:   excludes,
		ignore:     gitignore.CompileIgnoreLines(excludes...),
	}
}

func (fw *FileWalker) excluded(root, path string) bool {
	if len(fw.Excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return fw.ignore.MatchesPath(filepath.ToSlash(rel))
}

func (fw *FileWalker) wanted(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := fw.Extensions[ext]
	return ok
}

// Walk starts the traversal of every root and returns a channel of targets
// in lexical walk order. Roots that are files are always emitted.
// It runs in a separate goroutine and closes the channels when done.
func (fw *FileWalker) Walk(ctx context.Context, roots ...string) (<-chan Target, <-chan error) {
	targets := make(chan Target, 100)
	errs := make(chan error, len(roots))

	go func() {
		defer close(targets)
		defer close(errs)

		seq := 0
		emit := func(path string) error {
			select {
			case targets <- Target{Path: path, Seq: seq}:
				seq++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, root := range roots {
			info, err := os.Stat(root)
			if err != nil {
				errs <- errors.Wrapf(err, "stat %s", root)
				continue
			}
			if !info.IsDir() {
				if err := emit(root); err != nil {
					errs <- err
					return
				}
				continue
			}

			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}

				// Check cancellation
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				if d.IsDir() {
					if path == root {
						return nil
					}
					if strings.HasPrefix(d.Name(), ".") || fw.excluded(root, path) {
						slog.Debug("skipping directory", "path", path)
						return filepath.SkipDir
					}
					return nil
				}

				if fw.excluded(root, path) || !fw.wanted(path) {
					return nil
				}
				return emit(path)
			})
			if err != nil {
				errs <- errors.Wrapf(err, "walk %s", root)
				if ctx.Err() != nil {
					return
				}
			}
		}
	}()

	return targets, errs
}

type ScanResult struct {
	File       string
	Seq        int
	Statements []model.Statement
	Error      error
}

// Processor defines a function that processes a file
type Processor func(path string) ([]model.Statement, error)

// WorkerPool manages concurrent processing
type WorkerPool struct {
	Concurrency int
	Processor   Processor
}

func NewWorkerPool(concurrency int, proc Processor) *WorkerPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &WorkerPool{
		Concurrency: concurrency,
		Processor:   proc,
	}
}

func (wp *WorkerPool) Start(ctx context.Context, targets <-chan Target) <-chan ScanResult {
	results := make(chan ScanResult)
	var wg sync.WaitGroup

	for i := 0; i < wp.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range targets {
				select {
				case <-ctx.Done():
					return
				default:
					res, err := wp.Processor(t.Path)
					// We send result even if err is present, to report extraction errors
					select {
					case results <- ScanResult{File: t.Path, Seq: t.Seq, Statements: res, Error: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// Collect drains results and returns them in walk order.
func Collect(results <-chan ScanResult) []ScanResult {
	var out []ScanResult
	for res := range results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Statements flattens results into one ordered statement list and assigns
// each statement its global sequence number. Failed files are skipped.
func Statements(results []ScanResult) []model.Statement {
	var stmts []model.Statement
	for _, res := range results {
		if res.Error != nil {
			continue
		}
		for _, s := range res.Statements {
			s.Seq = len(stmts)
			stmts = append(stmts, s)
		}
	}
	return stmts
}
