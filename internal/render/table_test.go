package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableString(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		contains []string
		lines    int
	}{
		{
			name:     "given no rows should render title only",
			contains: []string{"Carrito"},
			lines:    1,
		},
		{
			name:     "given rows should render header divider and rows",
			rows:     [][]string{{"1", "Nike Air Max"}, {"2", "Buzo"}},
			contains: []string{"Carrito", "ID", "Nombre", "Nike Air Max", "Buzo", "---"},
			lines:    5,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			table := NewTable("Carrito", "ID", "Nombre")
			for _, row := range test.rows {
				table.AddRow(row...)
			}
			out := table.String()
			for _, s := range test.contains {
				assert.Contains(t, out, s)
			}
			assert.Equal(t, test.lines, strings.Count(out, "\n"))
		})
	}
}
