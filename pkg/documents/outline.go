package documents

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxFileNameLen = 80

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline lists the h1-h3 headings of rendered HTML in document order.
func Outline(html string) ([]Heading, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []Heading
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		level := int(goquery.NodeName(s)[1] - '0')
		out = append(out, Heading{Level: level, Text: text})
	})
	return out, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

// SuggestFileName picks a .docx name: the backend's own name when present, else the first
// heading of the HTML, else the prompt.
func SuggestFileName(doc *GeneratedDocument, prompt string) string {
	if doc != nil && strings.TrimSpace(doc.FileName) != "" {
		return ensureDocx(sanitizeFileName(doc.FileName))
	}
	base := ""
	if doc != nil {
		if headings, err := Outline(doc.HTML); err == nil && len(headings) > 0 {
			base = headings[0].Text
		}
	}
	if base == "" {
		base = prompt
	}
	return ensureDocx(sanitizeFileName(base))
}

func sanitizeFileName(name string) string {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".docx")
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), "_")
	if len(name) > maxFileNameLen {
		name = name[:maxFileNameLen]
	}
	if name == "" {
		name = "document"
	}
	return name
}

func ensureDocx(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".docx") {
		return name
	}
	return name + ".docx"
}
