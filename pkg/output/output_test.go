package output_test

import (
	"testing"

	"github.com/germanamz/smartbuddy/pkg/output"
	"github.com/stretchr/testify/assert"
)

func TestBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numbered with preamble",
			text: "Here you go:\n1. Sun and sand 🌊\n#beach\n2) Friends forever\n3. Salty hair",
			want: []string{"1. Sun and sand 🌊\n#beach", "2) Friends forever", "3. Salty hair"},
		},
		{
			name: "bullets",
			text: "- one\n• two\n  - three",
			want: []string{"- one", "• two", "- three"},
		},
		{
			name: "single item falls back to paragraphs",
			text: "1. only one\n\nsecond paragraph",
			want: []string{"1. only one", "second paragraph"},
		},
		{
			name: "paragraphs",
			text: "\nFirst para.\n \n\nSecond para.\nstill second\n",
			want: []string{"First para.", "Second para.\nstill second"},
		},
		{
			name: "single block trimmed",
			text: "  just one line  \n",
			want: []string{"just one line"},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: " \n\n\t ",
			want: nil,
		},
		{
			name: "devanagari numbered",
			text: "1. नमस्कार\n2. शुभ सकाळ",
			want: []string{"1. नमस्कार", "2. शुभ सकाळ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, output.Blocks(tt.text))
		})
	}
}

func TestShare(t *testing.T) {
	links := output.Share("Hi & bye #fun")

	assert.Equal(t, "https://wa.me/?text=Hi+%26+bye+%23fun", links.WhatsApp)
	assert.Equal(t, "https://www.instagram.com/", links.Instagram)
	assert.Equal(t, "https://www.linkedin.com/messaging/compose/?body=Hi+%26+bye+%23fun", links.LinkedIn)
}
