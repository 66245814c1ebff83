package extractor

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sqlcheck/internal/model"

	"github.com/pkg/errors"
)

// RegexExtractor finds SQL embedded in string literals of source files
type RegexExtractor struct {
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Patterns for different quote types
// Note: We use non-greedy *? to stop at the first closing quote
// We can't use backreferences in Go regexp (RE2)
var (
	doubleQuoteSQL = regexp.MustCompile(`"(?i)(?:SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|WITH)\b.*?"`)
	singleQuoteSQL = regexp.MustCompile(`'(?i)(?:SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|WITH)\b.*?'`)
	backTickSQL    = regexp.MustCompile("`(?i)(?:SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|WITH)\\b.*?`")
)

func (e *RegexExtractor) Extract(filePath string, content []byte) ([]model.Statement, error) {
	var segments []model.Statement

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		for _, re := range []*regexp.Regexp{doubleQuoteSQL, singleQuoteSQL, backTickSQL} {
			for _, match := range re.FindAllString(line, -1) {
				if len(match) < 2 {
					continue
				}
				// Strip quotes and any trailing terminator
				sql := Normalize(strings.TrimSuffix(strings.TrimSpace(match[1:len(match)-1]), ";"))
				if sql == "" {
					continue
				}
				segments = append(segments, model.Statement{
					SQL: sql,
					Location: model.Location{
						FilePath: filePath,
						Line:     lineNo,
					},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", filePath)
	}

	return segments, nil
}

// Manager selects the appropriate extractor based on file extension
type Manager struct {
	extractors map[string]model.Extractor
	fallback   model.Extractor
}

// NewManager returns a manager that treats .sql files, and anything
// without a registered extension, as plain SQL.
func NewManager() *Manager {
	sql := NewSQLExtractor()
	return &Manager{
		extractors: map[string]model.Extractor{"sql": sql},
		fallback:   sql,
	}
}

func (m *Manager) Register(ext string, extr model.Extractor) {
	m.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))] = extr
}

// Extensions lists the registered extensions.
func (m *Manager) Extensions() []string {
	exts := make([]string, 0, len(m.extractors))
	for ext := range m.extractors {
		exts = append(exts, ext)
	}
	return exts
}

func (m *Manager) Extract(filePath string) ([]model.Statement, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filePath)
	}
	return m.extract(filePath, content)
}

// ExtractReader reads all of r, e.g. stdin, as plain SQL.
func (m *Manager) ExtractReader(name string, r io.Reader) ([]model.Statement, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return m.fallback.Extract(name, content)
}

func (m *Manager) extract(filePath string, content []byte) ([]model.Statement, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if extr, ok := m.extractors[ext]; ok {
		return extr.Extract(filePath, content)
	}
	return m.fallback.Extract(filePath, content)
}
