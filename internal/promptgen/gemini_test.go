package promptgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePromptList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "plain lines",
			raw:  "first prompt\nsecond prompt\nthird prompt",
			want: []string{"first prompt", "second prompt", "third prompt"},
		},
		{
			name: "numbered with dots",
			raw:  "1. first prompt\n2. second prompt\n10. tenth prompt",
			want: []string{"first prompt", "second prompt", "tenth prompt"},
		},
		{
			name: "numbered with parens",
			raw:  "1) first prompt\n2) second prompt",
			want: []string{"first prompt", "second prompt"},
		},
		{
			name: "bulleted",
			raw:  "- first prompt\n* second prompt\n• third prompt",
			want: []string{"first prompt", "second prompt", "third prompt"},
		},
		{
			name: "blank lines and whitespace dropped",
			raw:  "\n  first prompt  \n\n   \nsecond prompt\n",
			want: []string{"first prompt", "second prompt"},
		},
		{
			name: "sentence with internal period survives",
			raw:  "standing in a loft. warm light from the left",
			want: []string{"standing in a loft. warm light from the left"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePromptList(tt.raw))
		})
	}
}

func TestBuildInstruction(t *testing.T) {
	got := buildInstruction("man", 15)

	assert.True(t, strings.HasPrefix(got, "Write 15 distinct photography prompts"))
	assert.Contains(t, got, "headshots of a man")
	assert.Contains(t, got, "one prompt per line")
}

func TestIsDigits(t *testing.T) {
	assert.True(t, isDigits("1"))
	assert.True(t, isDigits("42"))
	assert.False(t, isDigits(""))
	assert.False(t, isDigits("1a"))
	assert.False(t, isDigits("a"))
}
