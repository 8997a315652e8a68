package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"bob@example.com", true},
		{"bob.smith+files@mail.example.org", true},
		{"malformed-email", false},
		{"bob@", false},
		{"@example.com", false},
		{"bob@localhost", false},
		{"Bob <bob@example.com>", false},
		{"bob@example.", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidEmail(tt.in), tt.in)
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "bob@example.com", NormalizeEmail("  Bob@Example.COM \t"))
}
