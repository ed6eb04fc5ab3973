// Package fileparse turns uploaded files into one of three shapes the
// ingestion pipeline understands: a tabular spreadsheet, extracted document
// text, or raw image bytes. It knows nothing about transaction semantics.
package fileparse

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file types outside the recognized
// set. The caller rejects the upload immediately.
var ErrUnsupportedFormat = errors.New("fileparse: unsupported file format")

// Kind classifies a parsed input.
type Kind int

const (
	// KindTabular is a spreadsheet with headers and rows (CSV, XLSX).
	KindTabular Kind = iota
	// KindDocument is free text extracted from a paginated document (PDF, DOCX).
	KindDocument
	// KindImage is raw image bytes assumed to depict one receipt.
	KindImage
)

// Table is a parsed spreadsheet. Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Input is the parsed form of one uploaded file.
type Input struct {
	Kind      Kind
	Table     *Table // set when Kind == KindTabular
	Text      string // set when Kind == KindDocument
	Image     []byte // set when Kind == KindImage
	ImageMIME string // set when Kind == KindImage
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Read parses an uploaded file by extension. File types outside the
// recognized set fail with ErrUnsupportedFormat.
func Read(filename string, data []byte) (*Input, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		t, err := parseCSV(data)
		if err != nil {
			return nil, err
		}
		return &Input{Kind: KindTabular, Table: t}, nil
	case ".xlsx":
		t, err := parseXLSX(data)
		if err != nil {
			return nil, err
		}
		return &Input{Kind: KindTabular, Table: t}, nil
	case ".pdf":
		text, err := extractPDFText(data)
		if err != nil {
			return nil, err
		}
		return &Input{Kind: KindDocument, Text: text}, nil
	case ".docx":
		text, err := extractDOCXText(data)
		if err != nil {
			return nil, err
		}
		return &Input{Kind: KindDocument, Text: text}, nil
	}

	if mime, ok := imageMIMETypes[ext]; ok {
		return &Input{Kind: KindImage, Image: data, ImageMIME: mime}, nil
	}
	return nil, ErrUnsupportedFormat
}

// normalizeRows pads or truncates every row to exactly width cells so the
// resolver can index columns without bounds checks.
func normalizeRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == width {
			out = append(out, row)
			continue
		}
		fixed := make([]string, width)
		copy(fixed, row)
		out = append(out, fixed)
	}
	return out
}
