package importer

import "strings"

// field describes one target field: its synonyms in priority order and its
// canonical column position.
type field struct {
	name     string
	synonyms []string
	position int
}

const (
	colDescription = "description"
	colAmount      = "amount"
	colCategory    = "category"
	colDate        = "date"
	colType        = "type"

	colBudgeted = "budgeted"
	colSpent    = "spent"
	colMonth    = "month"

	colName            = "name"
	colTarget          = "target"
	colCurrent         = "current"
	colDeadline        = "deadline"
	colGoalDescription = "goal_description"
)

// Canonical orders match the exported files.
var (
	transactionFields = []field{
		{colDescription, []string{"description", "desc", "memo", "note"}, 0},
		{colAmount, []string{"amount", "value", "sum"}, 1},
		{colCategory, []string{"category", "cat"}, 2},
		{colDate, []string{"date", "day"}, 3},
		{colType, []string{"type", "kind"}, 4},
	}

	budgetFields = []field{
		{colCategory, []string{"category", "cat"}, 0},
		{colBudgeted, []string{"budgeted", "budget", "limit", "planned"}, 1},
		{colSpent, []string{"spent", "actual", "used"}, 2},
		{colMonth, []string{"month", "period"}, 3},
	}

	goalFields = []field{
		{colName, []string{"name", "goal", "title"}, 0},
		{colTarget, []string{"target"}, 1},
		{colCurrent, []string{"current", "saved", "progress"}, 2},
		{colDeadline, []string{"deadline", "due", "date"}, 3},
		{colGoalDescription, []string{"description", "desc", "note"}, 4},
	}
)

// resolve maps each field to a column: the first header containing one of
// its synonyms, otherwise its canonical position.
func resolve(header []string, fields []field) map[string]int {
	cols := make(map[string]int, len(fields))
	for _, f := range fields {
		cols[f.name] = f.position
		for i, h := range header {
			if matches(h, f.synonyms) {
				cols[f.name] = i
				break
			}
		}
	}
	return cols
}

func matches(header string, synonyms []string) bool {
	for _, s := range synonyms {
		if strings.Contains(header, s) {
			return true
		}
	}
	return false
}

type row struct {
	cells []string
	cols  map[string]int
}

func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i < 0 || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

func (r row) getOr(name, fallback string) string {
	if v := r.get(name); v != "" {
		return v
	}
	return fallback
}
