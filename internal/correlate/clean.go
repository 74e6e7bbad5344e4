package correlate

import (
	"strings"

	"golang.org/x/net/html"
)

// excerptMaxLen bounds cleaned field values carried on a correlation
const excerptMaxLen = 300

// cleanFieldValue strips markup from a field value, collapses whitespace and
// truncates the result. Upstream extraction can hand back raw HTML chunks;
// correlations must stay readable.
func cleanFieldValue(value string) string {
	if strings.ContainsRune(value, '<') {
		value = stripMarkup(value)
	}
	value = strings.Join(strings.Fields(value), " ")
	if len(value) > excerptMaxLen {
		value = value[:excerptMaxLen] + "..."
	}
	return value
}

// stripMarkup drops tags and returns the text content
func stripMarkup(value string) string {
	doc, err := html.Parse(strings.NewReader(value))
	if err != nil {
		return value
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return buf.String()
}

// containsWord matches a token at word boundaries only; plain substring
// matching would let "us" match inside "Australia"
func containsWord(text, token string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], token)
		if idx < 0 {
			return false
		}
		abs := start + idx
		end := abs + len(token)
		beforeOK := abs == 0 || !isAlnum(text[abs-1])
		afterOK := end >= len(text) || !isAlnum(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = abs + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
