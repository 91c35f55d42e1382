package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", "   "},
		{"single word", "Hello", "Hello"},
		{"exactly five words", "one two three four five", "one two three four five"},
		{"five words keep spacing", "  one  two three four five ", "  one  two three four five "},
		{"six words", "one two three four five six", "one two three four five..."},
		{"collapses whitespace", "one\ttwo\nthree   four five six seven", "one two three four five..."},
		{"tutor scenario", "Can you help me learn Rust systems programming please", "Can you help me learn..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveTitle(tt.message))
		})
	}
}

func TestDeriveTitle_LongMessagesKeepFirstFiveWords(t *testing.T) {
	message := strings.Repeat("word ", 40)
	title := DeriveTitle(message)

	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Equal(t, []string{"word", "word", "word", "word", "word..."}, strings.Fields(title))
}
