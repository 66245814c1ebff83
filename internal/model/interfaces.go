package model

// Extractor turns raw file content into normalized statements
type Extractor interface {
	// Extract splits content into statements. Seq is left for the caller to assign.
	Extract(filePath string, content []byte) ([]Statement, error)
}

// Reporter defines how to output results
type Reporter interface {
	Report(report *Report) error
}
