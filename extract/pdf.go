package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/altairlabs/platformkit/types"
)

// Page holds the extracted text of a single PDF page.
type Page struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"page_content"`
}

// Table holds a grid of cells reconstructed from positioned text on a
// single page.
type Table struct {
	PageNumber int        `json:"page_number"`
	Rows       [][]string `json:"rows"`
}

// minimum horizontal gap, in points, between texts on the same row
// before they are treated as separate cells.
const minCellGap = 8.0

func newPDFReader(content []byte) (*pdf.Reader, error) {
	if len(content) == 0 {
		return nil, types.NewError(types.ErrInputValidation, "pdf content cannot be empty")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, types.NewError(types.ErrInputValidation, "failed to open pdf").WithCause(err)
	}
	return r, nil
}

// PDFText extracts the plain text of the whole document.
func PDFText(content []byte) (string, error) {
	r, err := newPDFReader(content)
	if err != nil {
		return "", err
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	return sb.String(), nil
}

// PDFPages extracts text page by page. Page numbers are 1-based.
func PDFPages(content []byte) ([]Page, error) {
	r, err := newPDFReader(content)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		pages = append(pages, Page{PageNumber: i, Content: text})
	}
	return pages, nil
}

// PDFTables reconstructs tabular data from text positions. Texts on the
// same row are split into cells wherever a horizontal gap exceeds
// minCellGap, and consecutive multi-cell rows form one table.
func PDFTables(content []byte) ([]Table, error) {
	r, err := newPDFReader(content)
	if err != nil {
		return nil, err
	}

	var tables []Table
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("extract pdf tables page %d: %w", i, err)
		}

		var current [][]string
		flush := func() {
			if len(current) > 0 {
				tables = append(tables, Table{PageNumber: i, Rows: current})
				current = nil
			}
		}
		for _, row := range rows {
			cells := splitRowCells(row.Content)
			if len(cells) < 2 {
				// Single-cell rows are prose, not table content.
				flush()
				continue
			}
			current = append(current, cells)
		}
		flush()
	}
	return tables, nil
}

// splitRowCells groups positioned texts into cells by horizontal gap.
func splitRowCells(texts []pdf.Text) []string {
	var cells []string
	var cell strings.Builder
	var prevEnd float64

	for idx, t := range texts {
		if idx > 0 && t.X-prevEnd > minCellGap {
			cells = appendCell(cells, &cell)
		}
		cell.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	cells = appendCell(cells, &cell)
	return cells
}

func appendCell(cells []string, cell *strings.Builder) []string {
	s := strings.TrimSpace(cell.String())
	cell.Reset()
	if s == "" {
		return cells
	}
	return append(cells, s)
}
