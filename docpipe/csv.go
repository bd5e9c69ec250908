// CLAUDE:SUMMARY CSV extractor — semicolon-delimited by default, non-empty trimmed cells space-joined per row.
package docpipe

import (
	"encoding/csv"
	"os"
	"strings"
)

// extractCSV flattens a delimited file into text: within a row, trimmed
// non-empty cells are joined with single spaces; rows that end up empty are
// dropped; surviving rows are newline-joined. Ragged rows are accepted.
func (p *Pipeline) extractCSV(path string) (string, []Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = p.cfg.CSVDelimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return "", nil, err
	}

	var rows []string
	for _, record := range records {
		var cells []string
		for _, cell := range record {
			if c := strings.TrimSpace(cell); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " "))
		}
	}

	if len(rows) == 0 {
		return "", nil, nil
	}

	text := strings.Join(rows, "\n")
	return firstLine(text), []Section{{
		Text: text,
		Type: "table",
	}}, nil
}
