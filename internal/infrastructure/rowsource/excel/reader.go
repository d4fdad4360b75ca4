// Package excel reads extracted-table worksheets produced by the upstream
// PDF extraction step. REG010/REG114 exports have no header row and a fixed
// column layout; other exports carry their column names in the first row.
package excel

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/slc-app/invoice-engine/internal/core/domain"
)

// REG010Columns is the fixed seven-column layout of REG010 table extracts.
var REG010Columns = []string{
	"nature",
	"numero_facture",
	"code_journal",
	"numero_compte_comptable",
	"montant_comptable",
	"libelle_ecriture",
	"references_partenaire_facture",
}

// Reader maps worksheet rows to engine Rows. With a nil column list the
// first worksheet row is treated as the header.
type Reader struct {
	columns []string
}

func NewReader(columns []string) *Reader {
	return &Reader{columns: columns}
}

func (r *Reader) ReadRows(ctx context.Context, path string) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	columns := r.columns
	start := 0
	if columns == nil {
		if len(cells) == 0 {
			return nil, fmt.Errorf("workbook %s is empty, expected a header row", path)
		}
		columns = cells[0]
		start = 1
	}

	source := filepath.Base(path)
	rows := make([]domain.Row, 0, len(cells)-start)
	for i := start; i < len(cells); i++ {
		values := make(map[string]string, len(columns))
		for c, name := range columns {
			if name == "" {
				continue
			}
			if c < len(cells[i]) {
				values[name] = cells[i][c]
			} else {
				values[name] = ""
			}
		}
		rows = append(rows, domain.NewRow(domain.RowRef{SourceFile: source, Line: i + 1}, values))
	}
	return rows, nil
}
