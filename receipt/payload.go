package receipt

import (
	"encoding/base64"
	"log"
	"strings"
)

const htmlMimeType = "text/html"

// Node is one node of an email's nested body structure. It is either a Leaf
// or a Multipart.
type Node interface {
	isNode()
}

// Leaf is a typed body part. Data holds the base64url encoded content and is
// empty when the part carries no inline body.
type Leaf struct {
	MimeType string
	Data     string
}

// Multipart is a container whose children keep their original order.
type Multipart struct {
	MimeType string
	Parts    []Node
}

func (Leaf) isNode()      {}
func (Multipart) isNode() {}

// ExtractHTML walks the tree depth-first, pre-order, and returns the decoded
// content of the first text/html leaf that has body data. Invalid UTF-8 in the
// decoded bytes is dropped.
func ExtractHTML(root Node) (string, bool) {
	switch n := root.(type) {
	case Leaf:
		if !strings.EqualFold(n.MimeType, htmlMimeType) || n.Data == "" {
			return "", false
		}
		data, err := decodeBody(n.Data)
		if err != nil {
			log.Printf("Receipt: skipping undecodable text/html part: %v", err)
			return "", false
		}
		return strings.ToValidUTF8(string(data), ""), true
	case Multipart:
		for _, part := range n.Parts {
			if html, ok := ExtractHTML(part); ok {
				return html, true
			}
		}
	case *Leaf:
		if n != nil {
			return ExtractHTML(*n)
		}
	case *Multipart:
		if n != nil {
			return ExtractHTML(*n)
		}
	}
	return "", false
}

// decodeBody accepts base64url with or without padding.
func decodeBody(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
