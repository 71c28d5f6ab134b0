package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/de-tools/gbb-board/pkg/models/domain"
)

// JSON writes a normalized table as an array of row objects keyed by
// column name. Times serialize as RFC3339 strings.
func JSON(w io.Writer, table *domain.Table) error {
	rows := make([]map[string]any, 0, len(table.Rows))
	for _, row := range table.Rows {
		out := make(map[string]any, len(table.Columns))
		for _, col := range table.Columns {
			switch value := row[col.Name].(type) {
			case time.Time:
				out[col.Name] = value.Format(time.RFC3339)
			default:
				out[col.Name] = value
			}
		}
		rows = append(rows, out)
	}

	encoder := json.NewEncoder(w)
	return encoder.Encode(rows)
}
