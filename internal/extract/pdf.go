package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const scannedCharsPerPage = 100

func extractPDF(data []byte) (*Result, error) {
	pages, err := pdfPages(data)
	if err != nil {
		return nil, fmt.Errorf("extracting pdf text: %w", err)
	}
	return assemblePDF(pages), nil
}

// pdfPages returns the text of each page, rows in reading order.
func pdfPages(data []byte) (pages []string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		var b strings.Builder
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 && !strings.HasSuffix(b.String(), " ") {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages, nil
}

// assemblePDF joins page texts and flags documents averaging under
// 100 characters per page as scanned.
func assemblePDF(pages []string) *Result {
	total := 0
	for _, p := range pages {
		total += len([]rune(strings.TrimSpace(p)))
	}

	res := &Result{
		Text:      cleanText(strings.Join(pages, "\n\n")),
		PageCount: len(pages),
	}
	if len(pages) == 0 || total/len(pages) < scannedCharsPerPage {
		res.Scanned = true
		res.Warning = scannedWarning
	}
	return res
}
