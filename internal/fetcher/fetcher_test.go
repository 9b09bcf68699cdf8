package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/teaser-cli/internal/model"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		kind model.FileKind
		ok   bool
	}{
		{"financials.xlsx", model.FileKindWorkbook, true},
		{"model.XLSM", model.FileKindWorkbook, true},
		{"pnl.csv", model.FileKindWorkbook, true},
		{"teaser.txt", model.FileKindText, true},
		{"notes.md", model.FileKindText, true},
		{"deck.pptx", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		kind, ok := KindOf(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.kind, kind, tt.name)
	}
}
