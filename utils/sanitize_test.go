package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<script>hi</script>", "hi"},
		{"  ana  ", "ana"},
		{"<b></b>", ""},
		{"a<img src=x>b<br/>c", "abc"},
		{"plain name", "plain name"},
		{"<div><span>nested</span></div>", "nested"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeText(tt.in), "input=%q", tt.in)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("ana@example.com"))
	assert.True(t, ValidEmail("a.b+c@sub.example.com.br"))
	assert.False(t, ValidEmail("ana"))
	assert.False(t, ValidEmail("ana@"))
	assert.False(t, ValidEmail("ana@example"))
	assert.False(t, ValidEmail("ana example@example.com"))
}

func TestHandleFromUsername(t *testing.T) {
	assert.Equal(t, "ana-lima", HandleFromUsername("Ana Lima"))
	assert.Equal(t, "joao", HandleFromUsername("João"))
}
