package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStock(t *testing.T) {
	mappings := map[string]int{"Yes": 3, "Last Piece": 1, "No": 0}

	tests := []struct {
		name  string
		raw   string
		stock int
		ok    bool
	}{
		{name: "integer", raw: "7", stock: 7, ok: true},
		{name: "float truncates", raw: "2.0", stock: 2, ok: true},
		{name: "negative clamps", raw: "-3", stock: 0, ok: true},
		{name: "text mapping", raw: "last piece", stock: 1, ok: true},
		{name: "dash means zero", raw: "-", stock: 0, ok: true},
		{name: "en dash means zero", raw: "–", stock: 0, ok: true},
		{name: "digits salvage", raw: "12 pcs", stock: 12, ok: true},
		{name: "empty", raw: "", ok: false},
		{name: "pure text without mapping", raw: "soon", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock, ok := ParseStock(tt.raw, mappings)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.stock, stock)
			}
		})
	}
}
