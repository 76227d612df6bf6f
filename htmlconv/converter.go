// Package htmlconv renders the narrative text of an RTF document as HTML.
//
// The package implements the handler set the parser dispatches body tokens
// to: character formatting, paragraphs, hyperlink fields, bullet text,
// embedded pictures and embedded OLE packages. Extracted files (pictures and
// package items) go to a caller-supplied Sink; everything else accumulates
// into the document's HTML field.
package htmlconv

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/text/encoding"

	"github.com/Novlr/rtf2html/charset"
	"github.com/Novlr/rtf2html/model"
	"github.com/Novlr/rtf2html/parser"
	"github.com/Novlr/rtf2html/token"
)

// Sink receives files extracted from the document.
type Sink interface {
	Add(name string, data []byte)
}

// Converter holds the emission state for one conversion. A Converter drives
// a single parser instance and is not reusable.
type Converter struct {
	base string
	sink Sink

	doc      *model.Document
	out      strings.Builder
	pending  []byte   // raw text bytes awaiting charset decoding
	openTags []string // inline tags currently open, in emission order
	states   []charFormat
	cur      charFormat

	paraOpen    bool
	align       string
	skipBytes   int // \uN fallback bytes still to swallow
	suppress    int // nesting depth of suppressed subtrees
	anchorDepth int
	images      int
	warnings    []string
}

// New returns a Converter writing extracted files to sink. A nil sink
// discards them. baseURL is prepended to generated file names in HREF and
// IMG SRC attributes.
func New(baseURL string, sink Sink) *Converter {
	return &Converter{base: baseURL, sink: sink, cur: defaultFormat()}
}

// Warnings returns the non-fatal anomalies collected during conversion.
func (c *Converter) Warnings() []string {
	return c.warnings
}

// charFormat is the group-scoped character formatting state.
type charFormat struct {
	bold, italic, underline, strike, hidden bool
	sup, sub                                bool
	font                                    int // font table index, -1 none
	size                                    int // half points, 0 unset
	color                                   int // color table index, 0 is the auto color
	back                                    int
	uc                                      int // \ucN fallback byte count
}

func defaultFormat() charFormat {
	return charFormat{font: -1, uc: 1}
}

func (c *Converter) pushState() {
	c.states = append(c.states, c.cur)
}

func (c *Converter) popState() {
	c.flush()
	if n := len(c.states); n > 0 {
		c.cur = c.states[n-1]
		c.states = c.states[:n-1]
	}
}

func (c *Converter) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// text buffers raw document bytes for charset decoding, consuming pending
// \uN fallback bytes first.
func (c *Converter) text(s string) {
	if c.suppress > 0 {
		return
	}
	for c.skipBytes > 0 && len(s) > 0 {
		s = s[1:]
		c.skipBytes--
	}
	if len(s) == 0 || c.cur.hidden {
		return
	}
	c.pending = append(c.pending, s...)
}

// charByte buffers one \'HH escaped byte.
func (c *Converter) charByte(b byte) {
	if c.suppress > 0 {
		return
	}
	if c.skipBytes > 0 {
		c.skipBytes--
		return
	}
	if c.cur.hidden {
		return
	}
	c.pending = append(c.pending, b)
}

// symbol renders a control symbol.
func (c *Converter) symbol(b byte) {
	if c.suppress > 0 {
		return
	}
	if c.skipBytes > 0 {
		c.skipBytes--
		return
	}
	if c.cur.hidden {
		return
	}
	switch b {
	case '\\', '{', '}':
		c.pending = append(c.pending, b)
	case '~':
		c.entity("&nbsp;")
	case '-':
		c.entity("&shy;")
	case '_':
		c.entity("&#8209;")
	}
}

// entity emits raw HTML at the current position, flushing buffered text
// first.
func (c *Converter) entity(s string) {
	if c.suppress > 0 || c.cur.hidden {
		return
	}
	c.flush()
	c.write(s)
}

// unicode renders a \uN control word and arms the fallback-byte skip.
func (c *Converter) unicode(t token.Token) {
	if !t.HasValue {
		return
	}
	n := int(t.Value)
	if n < 0 {
		n += 65536
	}
	c.flush()
	if c.suppress == 0 && !c.cur.hidden {
		c.write(xhtml.EscapeString(string(rune(n))))
	}
	c.skipBytes = c.cur.uc
}

// flush decodes the buffered text bytes from the document encoding and
// writes them out escaped.
func (c *Converter) flush() {
	if len(c.pending) == 0 {
		return
	}
	b := c.pending
	c.pending = nil
	dec, err := charset.Decode(b, c.textEncoding())
	if err != nil {
		c.warn("undecodable text at current position: %v", err)
		dec = b
	}
	c.write(xhtml.EscapeString(string(dec)))
}

// textEncoding resolves the active text encoding: the current font's charset
// when it declares one, then the document code page, then the document
// character set.
func (c *Converter) textEncoding() encoding.Encoding {
	if c.doc == nil {
		return nil
	}
	if c.cur.font >= 0 {
		if f := c.doc.Font(c.cur.font); f != nil && f.Charset > 0 {
			if enc, ok := charset.FromFontCharset(f.Charset); ok {
				return enc
			}
		}
	}
	if c.doc.Codepage != 0 {
		if enc, ok := charset.FromCodepage(c.doc.Codepage); ok {
			return enc
		}
	}
	if c.doc.Charset != "" {
		if enc, ok := charset.FromName(c.doc.Charset); ok {
			return enc
		}
	}
	return nil
}

// write emits raw HTML at the current formatting position, opening the
// paragraph and synchronizing inline tags first.
func (c *Converter) write(s string) {
	c.ensurePara()
	c.syncTags(c.desiredTags())
	c.out.WriteString(s)
}

func (c *Converter) ensurePara() {
	if c.paraOpen {
		return
	}
	if c.align != "" {
		fmt.Fprintf(&c.out, "<P ALIGN=%s>", c.align)
	} else {
		c.out.WriteString("<P>")
	}
	c.paraOpen = true
}

func (c *Converter) closePara() {
	c.syncTags(nil)
	if c.paraOpen {
		c.out.WriteString("</P>")
		c.paraOpen = false
	}
}

// desiredTags lists the inline tags the current format state calls for, in
// a fixed nesting order.
func (c *Converter) desiredTags() []string {
	var tags []string
	if c.cur.bold {
		tags = append(tags, "<B>")
	}
	if c.cur.italic {
		tags = append(tags, "<I>")
	}
	if c.cur.underline {
		tags = append(tags, "<U>")
	}
	if c.cur.strike {
		tags = append(tags, "<S>")
	}
	if c.cur.sup {
		tags = append(tags, "<SUP>")
	}
	if c.cur.sub {
		tags = append(tags, "<SUB>")
	}
	if font := c.fontTag(); font != "" {
		tags = append(tags, font)
	}
	return tags
}

func (c *Converter) fontTag() string {
	var face, color string
	var styles []string
	if c.doc != nil && c.cur.font >= 0 {
		if f := c.doc.Font(c.cur.font); f != nil && f.Name != "" {
			face = f.Name
		}
	}
	if c.doc != nil && c.cur.color > 0 && c.cur.color < len(c.doc.Colors) {
		color = c.doc.Colors[c.cur.color].Hex()
	}
	if c.cur.size > 0 {
		if c.cur.size%2 == 0 {
			styles = append(styles, fmt.Sprintf("font-size:%dpt", c.cur.size/2))
		} else {
			styles = append(styles, fmt.Sprintf("font-size:%.1fpt", float64(c.cur.size)/2))
		}
	}
	if c.doc != nil && c.cur.back > 0 && c.cur.back < len(c.doc.Colors) {
		styles = append(styles, "background-color:"+c.doc.Colors[c.cur.back].Hex())
	}
	if face == "" && color == "" && len(styles) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<FONT")
	if face != "" {
		b.WriteString(` FACE="` + xhtml.EscapeString(face) + `"`)
	}
	if color != "" {
		b.WriteString(` COLOR="` + color + `"`)
	}
	if len(styles) > 0 {
		b.WriteString(` STYLE="` + strings.Join(styles, ";") + `"`)
	}
	b.WriteString(">")
	return b.String()
}

// syncTags closes and opens inline tags so the open set matches desired.
// The shared prefix stays put; everything past it closes in reverse order.
func (c *Converter) syncTags(desired []string) {
	i := 0
	for i < len(c.openTags) && i < len(desired) && c.openTags[i] == desired[i] {
		i++
	}
	for j := len(c.openTags) - 1; j >= i; j-- {
		c.out.WriteString(closingTag(c.openTags[j]))
	}
	c.openTags = c.openTags[:i]
	for ; i < len(desired); i++ {
		c.out.WriteString(desired[i])
		c.openTags = append(c.openTags, desired[i])
	}
}

func closingTag(open string) string {
	name := open[1 : len(open)-1]
	if i := strings.IndexByte(name, ' '); i >= 0 {
		name = name[:i]
	}
	return "</" + name + ">"
}

// href resolves a generated or document-supplied file name against the base
// URL. Absolute targets pass through unchanged.
func (c *Converter) href(name string) string {
	if strings.Contains(name, "://") || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "mailto:") {
		return name
	}
	return c.base + name
}

func (c *Converter) openAnchor(f *parser.Frame) {
	parent := f.Parent()
	if parent == nil {
		return
	}
	inst, _ := parent.State["fldinst"].(string)
	target := hyperlinkTarget(inst)
	if target == "" {
		return
	}
	c.flush()
	c.ensurePara()
	c.syncTags(nil)
	c.out.WriteString(`<A HREF="` + xhtml.EscapeString(c.href(target)) + `">`)
	c.anchorDepth++
}

func (c *Converter) closeAnchor() {
	if c.anchorDepth == 0 {
		return
	}
	c.flush()
	c.syncTags(nil)
	c.out.WriteString("</A>")
	c.anchorDepth--
}

// hyperlinkTarget extracts the target of a HYPERLINK field instruction.
func hyperlinkTarget(inst string) string {
	s := strings.TrimSpace(inst)
	if !strings.HasPrefix(s, "HYPERLINK") {
		return ""
	}
	s = strings.TrimSpace(s[len("HYPERLINK"):])
	if strings.HasPrefix(s, `"`) {
		if end := strings.Index(s[1:], `"`); end >= 0 {
			return s[1 : 1+end]
		}
		return s[1:]
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// controlWord applies one body control word to the emission state.
func (c *Converter) controlWord(name string, t token.Token) {
	if c.suppress > 0 || name == "" || name == "rtf" {
		return
	}
	on := !t.HasValue || t.Value != 0

	switch name {
	case "b", "i", "ul", "ulnone", "strike", "v", "super", "sub", "nosupersub",
		"plain", "f", "fs", "cf", "cb", "highlight", "chcbpat", "uc":
		c.flush()
	}

	switch name {
	case "b":
		c.cur.bold = on
	case "i":
		c.cur.italic = on
	case "ul":
		c.cur.underline = on
	case "ulnone":
		c.cur.underline = false
	case "strike":
		c.cur.strike = on
	case "v":
		c.cur.hidden = on
	case "super":
		c.cur.sup = on
		if on {
			c.cur.sub = false
		}
	case "sub":
		c.cur.sub = on
		if on {
			c.cur.sup = false
		}
	case "nosupersub":
		c.cur.sup, c.cur.sub = false, false
	case "plain":
		uc := c.cur.uc
		c.cur = defaultFormat()
		c.cur.uc = uc
	case "f":
		if t.HasValue {
			c.cur.font = int(t.Value)
		}
	case "fs":
		if t.HasValue {
			c.cur.size = int(t.Value)
		}
	case "cf":
		if t.HasValue {
			c.cur.color = int(t.Value)
		}
	case "cb", "highlight", "chcbpat":
		if t.HasValue {
			c.cur.back = int(t.Value)
		}
	case "uc":
		if t.HasValue {
			c.cur.uc = int(t.Value)
		}
	case "u":
		c.unicode(t)
	case "par":
		c.flush()
		c.closePara()
	case "pard":
		c.align = ""
	case "qc":
		c.align = "CENTER"
	case "ql":
		c.align = ""
	case "qr":
		c.align = "RIGHT"
	case "qj":
		c.align = "JUSTIFY"
	case "line":
		c.entity("<BR>")
	case "tab":
		c.entity("&nbsp;&nbsp;&nbsp;&nbsp;")
	case "lquote":
		c.entity("&lsquo;")
	case "rquote":
		c.entity("&rsquo;")
	case "ldblquote":
		c.entity("&ldquo;")
	case "rdblquote":
		c.entity("&rdquo;")
	case "bullet":
		c.entity("&bull;")
	case "endash":
		c.entity("&ndash;")
	case "emdash":
		c.entity("&mdash;")
	}
}

func (c *Converter) finish(doc *model.Document) {
	c.flush()
	c.closePara()
	doc.HTML = c.out.String()
}
