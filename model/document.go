// Package model defines the document structure the RTF parser's handlers
// accumulate: document-level metadata, the font and color tables, and the
// rendered HTML.
package model

import "fmt"

// Document is the root of the parsed document model. Handlers mutate it in
// place while the parser walks the source.
type Document struct {
	Version          int
	Charset          string // character-set control word: ansi, mac, pc or pca
	Codepage         int    // \ansicpg value, 0 when unset
	DefaultFontIndex int
	Fonts            []*Font // indexed by RTF font number; nil until a font table is seen
	Colors           []Color // nil until a color table is seen
	HTML             string

	// Custom holds collaborator-defined keys. Handlers own their key
	// namespace.
	Custom map[string]any
}

// NewDocument creates a new empty document.
func NewDocument() *Document {
	return &Document{
		Custom: make(map[string]any),
	}
}

// Font returns the font table entry for the given RTF font index, or nil
// when the index is unknown.
func (d *Document) Font(i int) *Font {
	if i < 0 || i >= len(d.Fonts) {
		return nil
	}
	return d.Fonts[i]
}

// SetFont stores f at RTF font index i, growing the table as needed. Font
// indices are sparse in real documents; intermediate slots stay nil.
func (d *Document) SetFont(i int, f *Font) {
	if i < 0 {
		return
	}
	for len(d.Fonts) <= i {
		d.Fonts = append(d.Fonts, nil)
	}
	d.Fonts[i] = f
}

// Font is one font table entry.
type Font struct {
	Family   string // roman, swiss, modern, script, decor, tech, bidi or nil
	Name     string
	Charset  int // \fcharset value
	Pitch    int // \fprq value
	Type     string // truetype or nil
	Codepage int // \cpg value
}

// Color is one color table entry.
type Color struct {
	R, G, B uint8
}

// Hex returns the HTML hex notation of the color, e.g. "#ff8000".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
