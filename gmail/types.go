package gmail

import (
	"strings"

	"github.com/bassamadnan/billsync/receipt"
	"google.golang.org/api/gmail/v1"
)

func toMessage(msg *gmail.Message) receipt.Message {
	m := receipt.Message{ID: msg.Id}
	if msg.Payload == nil {
		return m
	}
	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			if m.Subject == "" {
				m.Subject = header.Value
			}
		case "date":
			if m.Date == "" {
				m.Date = header.Value
			}
		}
	}
	m.Payload = toNode(msg.Payload)
	return m
}

// toNode converts a Gmail message part into the payload tree. Parts with a
// multipart/* type become containers; everything else is a leaf.
func toNode(part *gmail.MessagePart) receipt.Node {
	if strings.HasPrefix(strings.ToLower(part.MimeType), "multipart/") {
		children := make([]receipt.Node, 0, len(part.Parts))
		for _, p := range part.Parts {
			if p != nil {
				children = append(children, toNode(p))
			}
		}
		return receipt.Multipart{MimeType: part.MimeType, Parts: children}
	}
	leaf := receipt.Leaf{MimeType: part.MimeType}
	if part.Body != nil {
		leaf.Data = part.Body.Data
	}
	return leaf
}
