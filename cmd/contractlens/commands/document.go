package commands

import (
	"fmt"
	"os"

	"github.com/kiranshivaraju/contractlens/internal/extract"
)

// loadDocument reads a PDF or DOCX from disk and extracts its text.
// The file type comes from the extension.
func loadDocument(path string) (*extract.Result, error) {
	ft, err := extract.DetectFileType("", path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	res, err := extract.New().Extract(data, ft)
	if err != nil {
		return nil, err
	}
	return res, nil
}
