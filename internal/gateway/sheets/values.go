package sheets

import (
	"fmt"
	"sort"
	"strings"

	"fintrack/internal/gateway"
)

// rowsFromValues reads the header row and maps every following row onto it.
// Rows without an id are skipped.
func rowsFromValues(values [][]any) ([]string, []gateway.Row) {
	if len(values) == 0 {
		return nil, nil
	}
	header := toStrings(values[0])
	rows := make([]gateway.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cells := toStrings(raw)
		row := make(gateway.Row, len(header))
		for i, col := range header {
			row[col] = safeGet(cells, i)
		}
		if row[gateway.ColID] == "" {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows
}

// findRow returns the zero-based sheet row holding id, or -1.
func findRow(values [][]any, header []string, id string) int {
	col := indexOf(header, gateway.ColID)
	if col < 0 {
		return -1
	}
	for i := 1; i < len(values); i++ {
		if safeGet(toStrings(values[i]), col) == id {
			return i
		}
	}
	return -1
}

func sortRows(rows []gateway.Row, order gateway.Order) {
	if order.Column == "" {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := gateway.CompareValues(order.Column, rows[i][order.Column], rows[j][order.Column])
		if order.Desc {
			return c > 0
		}
		return c < 0
	})
}

// columnLetter maps 0 to "A", 25 to "Z", 26 to "AA".
func columnLetter(idx int) string {
	s := ""
	for idx >= 0 {
		s = string(rune('A'+idx%26)) + s
		idx = idx/26 - 1
	}
	return s
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
