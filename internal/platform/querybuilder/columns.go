package querybuilder

import "sort"

// SortedColumns returns the keys of values in lexical order so generated SQL is stable.
func SortedColumns(values map[string]any) []string {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}
