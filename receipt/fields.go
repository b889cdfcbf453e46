package receipt

import (
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Label is one of the canonical receipt field names.
type Label string

const (
	LabelOrderDate            Label = "ORDER DATE"
	LabelBillingAccountNumber Label = "BILLING ACCOUNT NUMBER"
	LabelPaymentReferenceID   Label = "PAYMENT REFERENCE ID"
	LabelOrderTotal           Label = "ORDER TOTAL"
	LabelPaymentMethod        Label = "PAYMENT METHOD"
)

// Labels lists the canonical labels in the order they appear on a receipt.
var Labels = []Label{
	LabelOrderDate,
	LabelBillingAccountNumber,
	LabelPaymentReferenceID,
	LabelOrderTotal,
	LabelPaymentMethod,
}

// Fields maps canonical labels to cleaned values. A label is present only if
// it was found.
type Fields map[Label]string

const (
	receiptMarker     = "Your payment receipt:"
	zeroWidthNonJoin  = "\u200c"
	orderTotalPattern = `(?i)ORDER TOTAL`
)

var orderTotalRe = regexp.MustCompile(orderTotalPattern)

func canonicalLabel(s string) (Label, bool) {
	for _, l := range Labels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

func parseDocument(body string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Printf("Receipt: unable to parse HTML: %v", err)
		return nil, false
	}
	return doc, true
}

// FindOrderTotal locates the paragraph whose text matches "ORDER TOTAL"
// (case-insensitive) and reads the first paragraph of the table row that
// follows the label's row.
func FindOrderTotal(body string) Optional {
	doc, ok := parseDocument(body)
	if !ok {
		return None()
	}
	return findOrderTotal(doc)
}

func findOrderTotal(doc *goquery.Document) Optional {
	var label *goquery.Selection
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if s, ok := soleString(p.Nodes[0]); ok && orderTotalRe.MatchString(s) {
			label = p
			return false
		}
		return true
	})
	if label == nil {
		return None()
	}

	row := label.ParentsFiltered("tr").First()
	if row.Length() == 0 {
		return None()
	}
	next := row.NextAllFiltered("tr").First()
	if next.Length() == 0 {
		return None()
	}
	price := next.Find("p").First()
	if price.Length() == 0 {
		return None()
	}
	return Some(clean(strippedText(price.Nodes[0])))
}

// ParseReceiptTable finds the first table containing the receipt marker and
// reads label/value row pairs out of it. A missing table yields an empty
// mapping.
func ParseReceiptTable(body string) Fields {
	doc, ok := parseDocument(body)
	if !ok {
		return Fields{}
	}
	return parseReceiptTable(doc)
}

func parseReceiptTable(doc *goquery.Document) Fields {
	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if containsString(t.Nodes[0], receiptMarker) {
			table = t
			return false
		}
		return true
	})
	fields := Fields{}
	if table == nil {
		log.Printf("Receipt: receipt table not found")
		return fields
	}

	rows := table.Find("tr")
	for i := 0; i < rows.Length()-1; i++ {
		cell := rows.Eq(i).Find("td").First()
		if cell.Length() == 0 {
			continue
		}
		text := strings.ToUpper(strings.TrimRight(strippedText(cell.Nodes[0]), ":"))
		label, ok := canonicalLabel(text)
		if !ok {
			continue
		}
		if value := rows.Eq(i + 1).Find("td").First(); value.Length() > 0 {
			fields[label] = clean(strippedText(value.Nodes[0]))
		}
		i++ // the value row is consumed
	}
	return fields
}

// soleString returns the text of a node that holds exactly one string,
// possibly through a chain of single-child elements.
func soleString(n *html.Node) (string, bool) {
	for n != nil {
		switch n.Type {
		case html.TextNode:
			return n.Data, true
		case html.ElementNode:
			if n.FirstChild == nil || n.FirstChild != n.LastChild {
				return "", false
			}
			n = n.FirstChild
		default:
			return "", false
		}
	}
	return "", false
}

// strippedText concatenates every descendant string with surrounding
// whitespace removed from each piece.
func strippedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.TrimSpace(n.Data))
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func containsString(n *html.Node, needle string) bool {
	if n.Type == html.TextNode {
		return strings.Contains(n.Data, needle)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if containsString(c, needle) {
			return true
		}
	}
	return false
}

// clean drops zero-width non-joiners before trimming, so whitespace they
// hid is trimmed too.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, zeroWidthNonJoin, ""))
}
