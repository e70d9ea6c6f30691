package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses intra-line whitespace",
			input: "hello    world\tand\t\tmore",
			want:  "hello world and more",
		},
		{
			name:  "trims line edges",
			input: "  hello  \n\tworld\t",
			want:  "hello\nworld",
		},
		{
			name:  "caps consecutive blank lines",
			input: "one\n\n\n\n\ntwo",
			want:  "one\n\ntwo",
		},
		{
			name:  "trims whole result",
			input: "\n\n  text  \n\n",
			want:  "text",
		},
		{
			name:  "windows line endings",
			input: "one\r\ntwo\r\n",
			want:  "one\ntwo",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace-only input",
			input: "  \n\t \n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\n\n\nSome   text\twith\tspacing\n\n\n\nMore text.",
		"plain text",
		"",
		"a\n\nb\n\nc",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}
