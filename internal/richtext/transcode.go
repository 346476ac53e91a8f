package richtext

import (
	"fmt"
	"strings"
)

// Zero-width characters dropped by the cleanup pass.
const zeroWidthRunes = "\u200b\u200c\u200d\ufeff"

// nbsp substitutes plain spaces inside runs of two or more before
// serialization. Markdown renderers collapse repeated whitespace, so without
// the rewrite a decode would not round-trip the original run length.
const nbsp = '\u00a0'

// Convert produces the plain-text projection of doc and, when
// preserveFormatting is set and the document carries attributes beyond
// plain-run defaults, its portable markdown serialization.
//
// Conversion never fails: a serialization error degrades to (plain, nil) and
// the caller is expected to fall back to plain text. Warnings for that case
// belong one layer up, with the entity mapper.
func Convert(doc Document, preserveFormatting bool) (string, []byte) {
	cleaned := clean(doc)
	plain := cleaned.Text
	if !preserveFormatting || !cleaned.HasFormatting() {
		return plain, nil
	}

	cleaned.Text = protectSpaceRuns(cleaned.Text)
	formatted, err := encode(cleaned)
	if err != nil {
		return plain, nil
	}
	return plain, formatted
}

// Verify reports whether formatted bytes decode back into a rich document.
// Used by tests and diagnostics only, never by the import path.
func Verify(formatted []byte) bool {
	_, err := Decode(formatted)
	return err == nil
}

// clean applies the content-neutral cleanup pass: line endings are
// normalized to "\n", zero-width characters are dropped, and trailing spaces
// and tabs are stripped from every line. Run offsets are remapped onto the
// cleaned text.
func clean(doc Document) Document {
	runes := []rune(doc.Text)
	drop := make([]bool, len(runes))

	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '\r':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				drop[i] = true
			} else {
				runes[i] = '\n'
			}
		case strings.ContainsRune(zeroWidthRunes, runes[i]):
			drop[i] = true
		}
	}

	stripTrailing := func(end int) {
		for j := end - 1; j >= 0; j-- {
			if drop[j] {
				continue
			}
			if runes[j] == ' ' || runes[j] == '\t' {
				drop[j] = true
				continue
			}
			return
		}
	}
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\n' && !drop[i] {
			stripTrailing(i)
		}
	}
	stripTrailing(len(runes))

	// keptBefore[i] = number of kept runes in runes[:i]
	keptBefore := make([]int, len(runes)+1)
	var b strings.Builder
	for i, r := range runes {
		keptBefore[i+1] = keptBefore[i]
		if !drop[i] {
			b.WriteRune(r)
			keptBefore[i+1]++
		}
	}

	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > len(runes) {
			return len(runes)
		}
		return v
	}

	cleaned := Document{Text: b.String(), Paragraphs: doc.Paragraphs}
	for _, r := range doc.Runs {
		start := clamp(r.Start)
		end := clamp(r.Start + r.Length)
		mapped := r
		mapped.Start = keptBefore[start]
		mapped.Length = keptBefore[end] - keptBefore[start]
		if mapped.Length > 0 {
			cleaned.Runs = append(cleaned.Runs, mapped)
		}
	}
	return cleaned
}

// protectSpaceRuns rewrites every space belonging to a run of two or more
// consecutive spaces to a non-breaking space. The text length is unchanged,
// so run offsets stay valid.
func protectSpaceRuns(text string) string {
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] != ' ' {
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		if j-i >= 2 {
			for k := i; k < j; k++ {
				runes[k] = nbsp
			}
		}
		i = j
	}
	return string(runes)
}

// span attributes effective at a single rune position. Font and color runs
// mark a document as formatted but are not expressible in the portable
// format; the serialization drops them.
type spanAttrs struct {
	bold          bool
	italic        bool
	underline     bool
	strikethrough bool
	link          string
}

func (a spanAttrs) equal(b spanAttrs) bool { return a == b }

// encode serializes the document as markdown. Paragraphs are separated by
// blank lines; heading and blockquote paragraph styles become "# " and "> "
// prefixes; inline attributes become emphasis, strikethrough, link and <u>
// markers. Returns an error for out-of-range runs.
func encode(doc Document) ([]byte, error) {
	runes := []rune(doc.Text)

	for _, r := range doc.Runs {
		if r.Start < 0 || r.Length < 0 || r.Start+r.Length > len(runes) {
			return nil, fmt.Errorf("run [%d,%d) out of range for %d characters", r.Start, r.Start+r.Length, len(runes))
		}
	}

	attrs := make([]spanAttrs, len(runes))
	for _, r := range doc.Runs {
		for i := r.Start; i < r.Start+r.Length; i++ {
			attrs[i].bold = attrs[i].bold || r.Bold
			attrs[i].italic = attrs[i].italic || r.Italic
			attrs[i].underline = attrs[i].underline || r.Underline
			attrs[i].strikethrough = attrs[i].strikethrough || r.Strikethrough
			if r.Link != "" {
				attrs[i].link = r.Link
			}
		}
	}

	var blocks []string
	offset := 0
	for pi, para := range doc.paragraphs() {
		length := len([]rune(para))
		var b strings.Builder
		switch doc.paragraphStyleAt(pi) {
		case ParagraphHeading:
			b.WriteString("# ")
		case ParagraphBlockquote:
			b.WriteString("> ")
		}
		encodeSpans(&b, runes[offset:offset+length], attrs[offset:offset+length])
		blocks = append(blocks, b.String())
		offset += length + 1 // consume the paragraph separator
	}

	return []byte(strings.Join(blocks, "\n\n")), nil
}

// encodeSpans writes one paragraph's runes, grouping consecutive characters
// with identical attributes into a single marked-up span.
func encodeSpans(b *strings.Builder, runes []rune, attrs []spanAttrs) {
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && attrs[j].equal(attrs[i]) {
			j++
		}
		writeSpan(b, string(runes[i:j]), attrs[i])
		i = j
	}
}

func writeSpan(b *strings.Builder, text string, a spanAttrs) {
	if a.link != "" {
		b.WriteString("[")
	}
	if a.underline {
		b.WriteString("<u>")
	}
	if a.strikethrough {
		b.WriteString("~~")
	}
	if a.bold {
		b.WriteString("**")
	}
	if a.italic {
		b.WriteString("*")
	}
	b.WriteString(escapeMarkdown(text))
	if a.italic {
		b.WriteString("*")
	}
	if a.bold {
		b.WriteString("**")
	}
	if a.strikethrough {
		b.WriteString("~~")
	}
	if a.underline {
		b.WriteString("</u>")
	}
	if a.link != "" {
		b.WriteString("](" + a.link + ")")
	}
}

const markdownSpecials = "\\`*_~[]<>#"

func escapeMarkdown(text string) string {
	var b strings.Builder
	for _, r := range text {
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
