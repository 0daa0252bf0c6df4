// Package extract turns uploaded contract documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// FileType is a supported document format.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// MinTextChars is the least extracted text worth sending to a model.
const MinTextChars = 50

const scannedWarning = "This appears to be a scanned document. Text extraction may be incomplete or inaccurate. Consider using a document with selectable text."

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInsufficientText    = errors.New("insufficient text extracted")
)

// Result is the outcome of text extraction.
type Result struct {
	Text      string
	PageCount int
	Scanned   bool
	Warning   string
}

// Extractor converts document bytes into text.
type Extractor interface {
	Extract(data []byte, ft FileType) (*Result, error)
}

// DocumentExtractor handles PDF and DOCX documents.
type DocumentExtractor struct{}

// New creates a DocumentExtractor.
func New() *DocumentExtractor {
	return &DocumentExtractor{}
}

func (e *DocumentExtractor) Extract(data []byte, ft FileType) (*Result, error) {
	switch ft {
	case FileTypePDF:
		return extractPDF(data)
	case FileTypeDOCX:
		return extractDOCX(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ft)
	}
}

// DetectFileType resolves the document format from the declared content type,
// falling back to the file extension.
func DetectFileType(contentType, fileName string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case ContentTypePDF:
		return FileTypePDF, nil
	case ContentTypeDOCX:
		return FileTypeDOCX, nil
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return FileTypePDF, nil
	case ".docx":
		return FileTypeDOCX, nil
	}

	return "", fmt.Errorf("%w: only PDF and DOCX files are supported", ErrUnsupportedFileType)
}

// ContentType returns the canonical MIME type of ft.
func ContentType(ft FileType) string {
	if ft == FileTypeDOCX {
		return ContentTypeDOCX
	}
	return ContentTypePDF
}

// InsufficientTextError reports that too little text was extracted to analyze.
type InsufficientTextError struct {
	Chars   int
	Scanned bool
}

func (e *InsufficientTextError) Error() string {
	if e.Scanned {
		return fmt.Sprintf("could not extract enough text (%d characters): the document is likely scanned/image-based", e.Chars)
	}
	return fmt.Sprintf("could not extract enough text (%d characters): the file may be empty or corrupted", e.Chars)
}

func (e *InsufficientTextError) Unwrap() error { return ErrInsufficientText }

// CheckSufficient fails with *InsufficientTextError when r holds fewer than
// MinTextChars characters of text.
func CheckSufficient(r *Result) error {
	n := len([]rune(strings.TrimSpace(r.Text)))
	if n < MinTextChars {
		return &InsufficientTextError{Chars: n, Scanned: r.Scanned}
	}
	return nil
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t]+`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// cleanText drops characters Postgres TEXT cannot store, collapses runs of
// spaces, limits blank lines to one and trims every line.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = stripControl(s)
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripControl removes invalid UTF-8 and C0 control characters other than
// tab and newline. PDF fonts without a ToUnicode map often decode to both.
// Lone carriage returns and form feeds become line breaks.
func stripControl(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r' || r == '\f' || r == '\v':
			return '\n'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}
