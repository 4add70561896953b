// Package extract turns binary document formats into text and
// structured data. PDF and Excel workbooks are supported out of the
// box, and a Registry routes loading by file extension.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Document is one extracted unit of content, a PDF page or a workbook
// sheet.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Loader reads one file format and produces documents.
type Loader interface {
	// Load reads the file at source and returns its documents.
	Load(ctx context.Context, source string) ([]Document, error)

	// SupportedTypes returns the file extensions this loader handles
	// (e.g. ".pdf").
	SupportedTypes() []string
}

// Registry routes Load calls to the right Loader by file extension.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader // extension (lowercase, with dot) -> loader
}

// NewRegistry creates a registry pre-populated with the built-in
// loaders.
func NewRegistry() *Registry {
	r := &Registry{
		loaders: make(map[string]Loader),
	}
	builtins := []Loader{
		NewPDFLoader(),
		NewExcelLoader(),
	}
	for _, l := range builtins {
		for _, ext := range l.SupportedTypes() {
			r.loaders[strings.ToLower(ext)] = l
		}
	}
	return r
}

// Register adds or replaces a loader for the given file extension.
// ext should include the leading dot.
func (r *Registry) Register(ext string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[strings.ToLower(ext)] = loader
}

// Load determines the loader from the source's extension and delegates
// to it.
func (r *Registry) Load(ctx context.Context, source string) ([]Document, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		return nil, fmt.Errorf("extract: cannot determine file type for %q (no extension)", source)
	}

	r.mu.RLock()
	l, ok := r.loaders[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("extract: no loader registered for extension %q", ext)
	}
	return l.Load(ctx, source)
}

// SupportedTypes returns all registered extensions, sorted.
func (r *Registry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// PDFLoader loads a PDF file as one Document per page.
type PDFLoader struct{}

// NewPDFLoader creates a PDFLoader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load reads a PDF file and returns one Document per page.
func (l *PDFLoader) Load(ctx context.Context, source string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("pdf loader: %w", err)
	}
	pages, err := PDFPages(data)
	if err != nil {
		return nil, fmt.Errorf("pdf loader: %w", err)
	}

	docs := make([]Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, Document{
			ID:      fmt.Sprintf("%s#page-%d", source, p.PageNumber),
			Content: p.Content,
			Metadata: map[string]any{
				"source_file":  filepath.Base(source),
				"source_path":  source,
				"content_type": "application/pdf",
				"page_number":  p.PageNumber,
				"loader":       "pdf",
			},
		})
	}
	return docs, nil
}

// SupportedTypes returns the extensions handled by PDFLoader.
func (l *PDFLoader) SupportedTypes() []string {
	return []string{".pdf"}
}

// ExcelLoader loads a workbook as one Document per sheet, cells joined
// with tabs and rows with newlines.
type ExcelLoader struct{}

// NewExcelLoader creates an ExcelLoader.
func NewExcelLoader() *ExcelLoader {
	return &ExcelLoader{}
}

// Load reads a workbook and returns one Document per sheet.
func (l *ExcelLoader) Load(ctx context.Context, source string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("excel loader: %w", err)
	}
	wb, err := OpenWorkbook(data)
	if err != nil {
		return nil, fmt.Errorf("excel loader: %w", err)
	}
	defer wb.Close()

	var docs []Document
	for _, sheet := range wb.SheetNames() {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, fmt.Errorf("excel loader: %w", err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, strings.Join(row, "\t"))
		}
		docs = append(docs, Document{
			ID:      fmt.Sprintf("%s#%s", source, sheet),
			Content: strings.Join(lines, "\n"),
			Metadata: map[string]any{
				"source_file":  filepath.Base(source),
				"source_path":  source,
				"content_type": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
				"sheet_name":   sheet,
				"row_count":    len(rows),
				"loader":       "excel",
			},
		})
	}
	return docs, nil
}

// SupportedTypes returns the extensions handled by ExcelLoader.
func (l *ExcelLoader) SupportedTypes() []string {
	return []string{".xlsx", ".xlsm"}
}
