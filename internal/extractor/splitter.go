package extractor

import (
	"strings"

	"sqlcheck/internal/model"
)

// Normalize lowercases a statement and collapses every whitespace run to a
// single space. Rules are written against this form.
func Normalize(sql string) string {
	return strings.ToLower(strings.Join(strings.Fields(sql), " "))
}

// SQLExtractor splits plain SQL files into statements on ';'.
// Terminators inside quotes are ignored and comments are dropped.
type SQLExtractor struct{}

func NewSQLExtractor() *SQLExtractor {
	return &SQLExtractor{}
}

func (e *SQLExtractor) Extract(filePath string, content []byte) ([]model.Statement, error) {
	var (
		segments []model.Statement
		buf      strings.Builder
		line     = 1
		start    = 0 // line where the current statement begins, 0 if not started
		quote    byte
	)

	flush := func() {
		if sql := Normalize(buf.String()); sql != "" {
			segments = append(segments, model.Statement{
				SQL:      sql,
				Location: model.Location{FilePath: filePath, Line: start},
			})
		}
		buf.Reset()
		start = 0
	}

	write := func(c byte) {
		if start == 0 && !isSpace(c) {
			start = line
		}
		buf.WriteByte(c)
	}

	for i := 0; i < len(content); i++ {
		c := content[i]

		if quote != 0 {
			write(c)
			if c == '\n' {
				line++
			}
			if c == quote {
				// doubled quote is an escaped quote
				if i+1 < len(content) && content[i+1] == quote {
					write(content[i+1])
					i++
					continue
				}
				quote = 0
			}
			continue
		}

		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			write(c)
		case c == '-' && i+1 < len(content) && content[i+1] == '-':
			for i < len(content) && content[i] != '\n' {
				i++
			}
			if i < len(content) {
				line++
				buf.WriteByte(' ')
			}
		case c == '/' && i+1 < len(content) && content[i+1] == '*':
			i += 2
			for i < len(content) && !(content[i] == '*' && i+1 < len(content) && content[i+1] == '/') {
				if content[i] == '\n' {
					line++
				}
				i++
			}
			i++ // skip the closing '/'
			buf.WriteByte(' ')
		case c == ';':
			flush()
		case c == '\n':
			line++
			buf.WriteByte(c)
		default:
			write(c)
		}
	}
	flush()

	return segments, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
