// Package pdftext pulls raw text out of GED001-style PDFs. Each file becomes
// a single row whose texte_brut column carries the whole document text, the
// shape the GED001 import historically worked on. Table geometry detection
// stays upstream.
package pdftext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

type Reader struct{}

func NewReader() *Reader { return &Reader{} }

func (r *Reader) ReadRows(ctx context.Context, path string) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var sb strings.Builder
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract text from %s page %d: %w", path, page, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return []domain.Row{DocumentRow(filepath.Base(path), sb.String())}, nil
}

// DocumentRow shapes one extracted document as an engine row: an identifier
// derived from the file name plus the raw text.
func DocumentRow(filename, text string) domain.Row {
	identifiant := strings.TrimSuffix(filename, filepath.Ext(filename))
	return domain.NewRow(
		domain.RowRef{SourceFile: filename, Line: 1},
		map[string]string{
			"identifiant": identifiant,
			"texte_brut":  strings.TrimSpace(text),
		},
	)
}
