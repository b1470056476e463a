package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "Runs all checks.", 60, "Runs all checks."},
		{"exact", "hello", 5, "hello"},
		{"cut", "Prepares the mount directory holding the agent", 20, "Prepares the moun..."},
		{"single line", "Creek components:\n  the services\tunder test", 60, "Creek components: the services under test"},
		{"runes", "débogage des services", 10, "débogag..."},
		{"tiny width", "hello world", 1, "h..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.input, tt.width))
		})
	}
}
