package receipt

import (
	"encoding/base64"
	"testing"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractHTML(t *testing.T) {
	tests := []struct {
		name   string
		root   Node
		want   string
		wantOK bool
	}{
		{
			name:   "single html leaf",
			root:   Leaf{MimeType: "text/html", Data: encode("<p>hi</p>")},
			want:   "<p>hi</p>",
			wantOK: true,
		},
		{
			name:   "plain leaf only",
			root:   Leaf{MimeType: "text/plain", Data: encode("hi")},
			wantOK: false,
		},
		{
			name: "depth first order wins over later sibling",
			root: Multipart{MimeType: "multipart/mixed", Parts: []Node{
				Leaf{MimeType: "text/plain", Data: encode("plain")},
				Multipart{MimeType: "multipart/alternative", Parts: []Node{
					Leaf{MimeType: "text/html", Data: encode("first")},
				}},
				Leaf{MimeType: "text/html", Data: encode("second")},
			}},
			want:   "first",
			wantOK: true,
		},
		{
			name: "html leaf without data is skipped",
			root: Multipart{MimeType: "multipart/alternative", Parts: []Node{
				Leaf{MimeType: "text/html"},
				Leaf{MimeType: "text/html", Data: encode("body")},
			}},
			want:   "body",
			wantOK: true,
		},
		{
			name:   "empty multipart",
			root:   Multipart{MimeType: "multipart/mixed"},
			wantOK: false,
		},
		{
			name:   "unpadded data",
			root:   Leaf{MimeType: "text/html", Data: base64.RawURLEncoding.EncodeToString([]byte("ab"))},
			want:   "ab",
			wantOK: true,
		},
		{
			name:   "invalid utf-8 is dropped",
			root:   Leaf{MimeType: "text/html", Data: encode("a\xffb")},
			want:   "ab",
			wantOK: true,
		},
		{
			name:   "nil tree",
			root:   nil,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHTML(tt.root)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("html: got %q, want %q", got, tt.want)
			}
		})
	}
}
