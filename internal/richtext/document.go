// Package richtext models rich-text bodies read from the legacy store and
// transcodes them into a plain-text projection plus an optional portable
// markdown serialization.
//
// The transcoding is deliberately lossy: attributes the portable format
// cannot express (font overrides, colors) still mark a document as formatted
// but are dropped from the serialization. Conversion never fails outright;
// it degrades to plain text.
package richtext

import "strings"

type ParagraphStyle string

const (
	ParagraphBody       ParagraphStyle = "body"
	ParagraphHeading    ParagraphStyle = "heading"
	ParagraphBlockquote ParagraphStyle = "blockquote"
)

// Run is a contiguous range of characters sharing formatting attributes.
// Offsets are rune-based into Document.Text.
type Run struct {
	Start  int `json:"start"`
	Length int `json:"length"`

	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Link          string `json:"link,omitempty"`
	FontName      string `json:"font_name,omitempty"`
	FontSize      float64 `json:"font_size,omitempty"`
	Color         string `json:"color,omitempty"`
}

// IsPlain reports whether the run carries no attributes beyond defaults.
func (r Run) IsPlain() bool {
	return !r.Bold && !r.Italic && !r.Underline && !r.Strikethrough &&
		r.Link == "" && r.FontName == "" && r.FontSize == 0 && r.Color == ""
}

// Document is an immutable rich-text value: a character sequence, formatting
// runs over it, and per-paragraph styles. Paragraphs are the segments of Text
// split on "\n"; Paragraphs[i] styles the i-th segment and may be shorter
// than the paragraph count (missing entries are body paragraphs).
type Document struct {
	Text       string           `json:"text"`
	Runs       []Run            `json:"runs,omitempty"`
	Paragraphs []ParagraphStyle `json:"paragraphs,omitempty"`
}

// Plain constructs an unformatted document.
func Plain(text string) Document {
	return Document{Text: text}
}

// HasFormatting reports whether any run or paragraph carries attributes
// beyond plain defaults.
func (d Document) HasFormatting() bool {
	for _, r := range d.Runs {
		if !r.IsPlain() && r.Length > 0 {
			return true
		}
	}
	for _, p := range d.Paragraphs {
		if p != "" && p != ParagraphBody {
			return true
		}
	}
	return false
}

// paragraphStyleAt returns the style of paragraph i, defaulting to body.
func (d Document) paragraphStyleAt(i int) ParagraphStyle {
	if i < len(d.Paragraphs) && d.Paragraphs[i] != "" {
		return d.Paragraphs[i]
	}
	return ParagraphBody
}

func (d Document) paragraphs() []string {
	return strings.Split(d.Text, "\n")
}
