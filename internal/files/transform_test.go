package files

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "inserts flag after upload segment",
			in:   "https://res.example.com/demo/raw/upload/v1700000000/journals/paper.pdf",
			want: "https://res.example.com/demo/raw/upload/fl_attachment/v1700000000/journals/paper.pdf",
		},
		{
			name: "already flagged",
			in:   "https://res.example.com/demo/raw/upload/fl_attachment/v1/paper.pdf",
			want: "https://res.example.com/demo/raw/upload/fl_attachment/v1/paper.pdf",
		},
		{
			name: "no upload segment",
			in:   "https://files.example.com/paper.pdf",
			want: "https://files.example.com/paper.pdf",
		},
		{
			name: "only first segment is rewritten",
			in:   "https://res.example.com/upload/a/upload/b.pdf",
			want: "https://res.example.com/upload/fl_attachment/a/upload/b.pdf",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AttachmentURL(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, AttachmentURL(got), "must be idempotent")
		})
	}
}

func TestEncodeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "spaces in path",
			in:   "https://res.example.com/raw/upload/My Paper final.pdf",
			want: "https://res.example.com/raw/upload/My%20Paper%20final.pdf",
		},
		{
			name: "existing escapes are kept",
			in:   "https://res.example.com/raw/upload/My%20Paper.pdf?sig=a",
			want: "https://res.example.com/raw/upload/My%20Paper.pdf?sig=a",
		},
		{
			name: "stray percent in path",
			in:   "https://res.example.com/raw/upload/100% Bees.pdf",
			want: "https://res.example.com/raw/upload/100%25%20Bees.pdf",
		},
		{
			name: "space in query",
			in:   "https://res.example.com/raw/upload/a.pdf?v=a b&sig=x",
			want: "https://res.example.com/raw/upload/a.pdf?v=a%20b&sig=x",
		},
		{
			name: "non-ascii in path and query",
			in:   "https://res.example.com/raw/upload/Über.pdf?t=ü",
			want: "https://res.example.com/raw/upload/%C3%9Cber.pdf?t=%C3%BC",
		},
		{
			name: "stray percent in query",
			in:   "https://res.example.com/a.pdf?off=50%",
			want: "https://res.example.com/a.pdf?off=50%25",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := EncodeURL(got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "encoding an encoded url is a no-op")
		})
	}

	_, err := EncodeURL("http://[::1")
	assert.Error(t, err)
}
