package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLinks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain text body",
			body: "Your inventory file: https://vendor.example.com/feeds/today.xlsx\nThanks",
			want: []string{"https://vendor.example.com/feeds/today.xlsx"},
		},
		{
			name: "html body",
			body: `<a href="https://vendor.example.com/dl?id=42">Download</a>`,
			want: []string{"https://vendor.example.com/dl?id=42"},
		},
		{
			name: "trailing punctuation trimmed",
			body: "Get it at http://vendor.example.com/feed.csv.",
			want: []string{"http://vendor.example.com/feed.csv"},
		},
		{
			name: "deduplicated in order",
			body: "https://a.example.com/1 then https://b.example.com/2 then https://a.example.com/1",
			want: []string{"https://a.example.com/1", "https://b.example.com/2"},
		},
		{
			name: "no links",
			body: "no attachments today",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractLinks(tt.body))
		})
	}
}
