package receipt

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DateLayout is the canonical ledger date form, e.g. "21 Mar 2025".
const DateLayout = "02 Jan 2006"

// DefaultItemName is used when no item name is configured.
const DefaultItemName = "enercare"

// Optional is a string that may be absent. The zero value is absent, so "not
// found" never reads as an empty string.
type Optional struct {
	value string
	ok    bool
}

func Some(v string) Optional { return Optional{value: v, ok: true} }
func None() Optional         { return Optional{} }

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) { return o.value, o.ok }

// Present reports whether a value was found.
func (o Optional) Present() bool { return o.ok }

// Or returns the value, or fallback when absent.
func (o Optional) Or(fallback string) string {
	if o.ok {
		return o.value
	}
	return fallback
}

func (o Optional) String() string {
	if !o.ok {
		return "<absent>"
	}
	return o.value
}

// Record is the unit of ledger storage and deduplication.
type Record struct {
	Item    string
	Date    string
	Total   Optional
	Subject string
}

// Row returns the wire shape [item, date, total, subject]. An absent total
// becomes an empty cell.
func (r Record) Row() []string {
	return []string{r.Item, r.Date, r.Total.Or(""), r.Subject}
}

// Header is the ledger's header row.
var Header = []string{"item", "date", "total", "subject"}

// Message is the part of an email the extraction needs.
type Message struct {
	ID      string
	Subject string
	Date    string
	Payload Node
}

// Extraction is everything read out of one message.
type Extraction struct {
	HTMLFound bool
	Total     Optional
	Details   Fields
}

// Extract runs both field strategies over the message's HTML. The order
// total comes from the ORDER TOTAL paragraph lookup; the receipt table's
// ORDER TOTAL is used only when that lookup finds nothing.
func Extract(msg Message) Extraction {
	body, ok := ExtractHTML(msg.Payload)
	if !ok {
		return Extraction{Details: Fields{}}
	}
	doc, ok := parseDocument(body)
	if !ok {
		return Extraction{HTMLFound: true, Details: Fields{}}
	}
	ex := Extraction{
		HTMLFound: true,
		Total:     findOrderTotal(doc),
		Details:   parseReceiptTable(doc),
	}
	if !ex.Total.Present() {
		if v, ok := ex.Details[LabelOrderTotal]; ok {
			ex.Total = Some(v)
		}
	}
	return ex
}

// Assemble builds the ledger record for a message from its metadata and the
// extracted order total.
func Assemble(item, subject, date string, total Optional) (Record, error) {
	t, err := ParseDate(date)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Item:    item,
		Date:    t.Format(DateLayout),
		Total:   total,
		Subject: subject,
	}, nil
}

var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// ParseDate parses an RFC 5322 Date header, keeping the sender's offset.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := mail.ParseDate(value); err == nil {
		return t, nil
	}
	noComment := value
	if open := strings.LastIndex(noComment, " ("); open != -1 {
		if end := strings.LastIndex(noComment, ")"); end > open {
			noComment = strings.TrimSpace(noComment[:open] + noComment[end+1:])
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
		if t, err := time.Parse(layout, noComment); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", value)
}
