package richtext

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Decode parses a portable serialization produced by Convert back into a
// Document. Non-breaking spaces are mapped back to plain spaces, so a
// convert/decode round trip preserves the original space-run lengths.
//
// Decode rejects markdown constructs the encoder never emits (lists, code
// blocks, thematic breaks); it exists for verification, not as a general
// markdown importer.
func Decode(formatted []byte) (Document, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader(formatted))

	d := &decoder{source: formatted}
	for block := root.FirstChild(); block != nil; block = block.NextSibling() {
		if err := d.decodeBlock(block); err != nil {
			return Document{}, err
		}
	}
	return Document{Text: d.text.String(), Runs: d.runs, Paragraphs: d.paragraphs}, nil
}

type decoder struct {
	source     []byte
	text       strings.Builder
	runs       []Run
	paragraphs []ParagraphStyle
	pos        int // rune offset into the accumulated text
	underline  bool
}

func (d *decoder) decodeBlock(block ast.Node) error {
	switch n := block.(type) {
	case *ast.Heading:
		d.startParagraph(ParagraphHeading)
		return d.decodeInlines(n, spanAttrs{})
	case *ast.Blockquote:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			d.startParagraph(ParagraphBlockquote)
			if err := d.decodeInlines(child, spanAttrs{}); err != nil {
				return err
			}
		}
		return nil
	case *ast.Paragraph:
		d.startParagraph(ParagraphBody)
		return d.decodeInlines(n, spanAttrs{})
	case *ast.TextBlock:
		d.startParagraph(ParagraphBody)
		return d.decodeInlines(n, spanAttrs{})
	default:
		return fmt.Errorf("unsupported block %s", block.Kind())
	}
}

func (d *decoder) startParagraph(style ParagraphStyle) {
	if len(d.paragraphs) > 0 {
		d.text.WriteByte('\n')
		d.pos++
	}
	d.paragraphs = append(d.paragraphs, style)
}

func (d *decoder) decodeInlines(parent ast.Node, attrs spanAttrs) error {
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			d.append(unescapeMarkdown(string(n.Segment.Value(d.source))), attrs)
			if n.SoftLineBreak() || n.HardLineBreak() {
				d.append(" ", attrs)
			}
		case *ast.String:
			d.append(unescapeMarkdown(string(n.Value)), attrs)
		case *ast.CodeSpan:
			for t := n.FirstChild(); t != nil; t = t.NextSibling() {
				if txt, ok := t.(*ast.Text); ok {
					d.append(string(txt.Segment.Value(d.source)), attrs)
				}
			}
		case *ast.Emphasis:
			sub := attrs
			if n.Level >= 2 {
				sub.bold = true
			} else {
				sub.italic = true
			}
			if err := d.decodeInlines(n, sub); err != nil {
				return err
			}
		case *extast.Strikethrough:
			sub := attrs
			sub.strikethrough = true
			if err := d.decodeInlines(n, sub); err != nil {
				return err
			}
		case *ast.Link:
			sub := attrs
			sub.link = string(n.Destination)
			if err := d.decodeInlines(n, sub); err != nil {
				return err
			}
		case *ast.AutoLink:
			url := string(n.URL(d.source))
			sub := attrs
			sub.link = url
			d.append(url, sub)
		case *ast.RawHTML:
			tag := rawHTMLValue(n, d.source)
			switch strings.ToLower(tag) {
			case "<u>":
				d.underline = true
			case "</u>":
				d.underline = false
			default:
				return fmt.Errorf("unsupported inline html %q", tag)
			}
		default:
			return fmt.Errorf("unsupported inline %s", child.Kind())
		}
	}
	return nil
}

// append writes a text chunk and records a run when any attribute is active.
// Non-breaking spaces introduced by the whitespace-protection rewrite are
// mapped back to plain spaces.
func (d *decoder) append(s string, attrs spanAttrs) {
	if s == "" {
		return
	}
	s = strings.ReplaceAll(s, string(nbsp), " ")
	length := len([]rune(s))

	attrs.underline = attrs.underline || d.underline
	if attrs != (spanAttrs{}) {
		run := Run{
			Start:         d.pos,
			Length:        length,
			Bold:          attrs.bold,
			Italic:        attrs.italic,
			Underline:     attrs.underline,
			Strikethrough: attrs.strikethrough,
			Link:          attrs.link,
		}
		// Merge with the previous run when the chunks are adjacent twins.
		if len(d.runs) > 0 {
			prev := &d.runs[len(d.runs)-1]
			if prev.Start+prev.Length == run.Start && sameAttrs(*prev, run) {
				prev.Length += run.Length
			} else {
				d.runs = append(d.runs, run)
			}
		} else {
			d.runs = append(d.runs, run)
		}
	}

	d.text.WriteString(s)
	d.pos += length
}

func sameAttrs(a, b Run) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Underline == b.Underline &&
		a.Strikethrough == b.Strikethrough && a.Link == b.Link
}

func rawHTMLValue(n *ast.RawHTML, source []byte) string {
	var b strings.Builder
	for i := 0; i < n.Segments.Len(); i++ {
		segment := n.Segments.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}

// unescapeMarkdown removes backslash escapes before ASCII punctuation, the
// inverse of escapeMarkdown. goldmark keeps the backslashes in text segments
// and only strips them at render time, so the decoder does it here.
func unescapeMarkdown(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && isASCIIPunct(runes[i+1]) {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

func isASCIIPunct(r rune) bool {
	return strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r)
}
