package provider

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/use-agent/serprank/models"
)

// containerMarkup returns the outer markup of the first <tag id="id"> element
// in doc, bounded by walking the token stream with an explicit depth counter:
// every nested <tag> (including <tag/> for non-void tags) opens a level and
// every </tag> closes one. The element ends when the depth returns to zero. Regex matching cannot bound
// nested same-named elements.
//
// It returns "" when no such element exists. An element left open at the end
// of the document extends to the end of the document.
func containerMarkup(doc, tag, id string) (string, error) {
	z := html.NewTokenizer(strings.NewReader(doc))

	offset, start, depth := 0, -1, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return "", models.NewRankError(models.ErrCodeExtraction, "tokenize result page", err)
			}
			break
		}
		size := len(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != tag {
				break
			}
			// HTML ignores the self-closing flag on non-void elements.
			if tt == html.SelfClosingTagToken && voidElements[tag] {
				break
			}
			if depth > 0 {
				depth++
			} else if hasAttr && hasAttrValue(z, "id", id) {
				start, depth = offset, 1
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if depth > 0 && string(name) == tag {
				depth--
				if depth == 0 {
					return doc[start : offset+size], nil
				}
			}
		}
		offset += size
	}

	if start < 0 {
		return "", nil
	}
	return doc[start:], nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// hasAttrValue consumes the current tag's attributes looking for key=val.
func hasAttrValue(z *html.Tokenizer, key, val string) bool {
	for {
		k, v, more := z.TagAttr()
		if string(k) == key && strings.TrimSpace(string(v)) == val {
			return true
		}
		if !more {
			return false
		}
	}
}
