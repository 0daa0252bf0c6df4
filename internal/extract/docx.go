package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart          = "word/document.xml"
	docxScannedChars      = 100
	docxCharsPerPage      = 3000
	docxLittleTextWarning = "This document contains very little text. It may be image-based or empty."
)

func extractDOCX(data []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("extracting docx text: not a zip archive: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("extracting docx text: %s not found", docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("extracting docx text: %w", err)
	}
	defer rc.Close()

	raw, err := wordprocessingText(rc)
	if err != nil {
		return nil, fmt.Errorf("extracting docx text: %w", err)
	}

	text := cleanText(raw)
	chars := len([]rune(text))

	res := &Result{
		Text:      text,
		PageCount: max(1, (chars+docxCharsPerPage-1)/docxCharsPerPage),
	}
	if chars < docxScannedChars {
		res.Scanned = true
		res.Warning = docxLittleTextWarning
	}
	return res, nil
}

// wordprocessingText walks a WordprocessingML body and returns its run text,
// one line per paragraph.
func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inRun, inText := false, false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// Tab stops in paragraph properties are not content.
				if inRun {
					b.WriteByte('\t')
				}
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
