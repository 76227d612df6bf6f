package parser

import (
	"fmt"
	"strings"

	"github.com/Novlr/rtf2html/model"
	"github.com/Novlr/rtf2html/token"
)

// metaHandler populates document-level metadata from the root ;rtf
// destination: the RTF version from the opening control word, the character
// set, the code page and the default font.
type metaHandler struct{}

func (metaHandler) Handle(t token.Token, src string, off int, f *Frame) error {
	doc := f.Document()
	switch t.Kind {
	case token.GroupOpen:
		if f.Word.HasValue {
			doc.Version = int(f.Word.Value)
		}
	case token.ControlWord:
		switch name := t.Name(src, off); name {
		case "ansi", "mac", "pc", "pca":
			doc.Charset = name
		case "ansicpg":
			if t.HasValue {
				doc.Codepage = int(t.Value)
			}
		case "deff":
			if t.HasValue {
				doc.DefaultFontIndex = int(t.Value)
			}
		}
	}
	return nil
}

// fontTableKey holds the font entry a frame is currently filling in.
const fontTableKey = "fonttbl.font"

// fontTableHandler fills in the document's font table. It serves both the
// ;rtf;fonttbl destination (entries written inline) and the ;rtf;fonttbl;f
// sub-destinations (entries wrapped in their own groups).
type fontTableHandler struct{}

func (fontTableHandler) Handle(t token.Token, src string, off int, f *Frame) error {
	doc := f.Document()
	switch t.Kind {
	case token.GroupOpen:
		if f.Name == "f" && f.Word.HasValue {
			bindFont(f, doc, int(f.Word.Value))
		}
	case token.ControlWord:
		name := t.Name(src, off)
		switch name {
		case "f":
			if t.HasValue {
				bindFont(f, doc, int(t.Value))
			}
		case "fnil", "froman", "fswiss", "fmodern", "fscript", "fdecor", "ftech", "fbidi":
			if font := currentFont(f); font != nil {
				font.Family = strings.TrimPrefix(name, "f")
			}
		case "fcharset":
			if font := currentFont(f); font != nil && t.HasValue {
				font.Charset = int(t.Value)
			}
		case "fprq":
			if font := currentFont(f); font != nil && t.HasValue {
				font.Pitch = int(t.Value)
			}
		case "ftnil", "fttruetype":
			if font := currentFont(f); font != nil {
				font.Type = strings.TrimPrefix(name, "ft")
			}
		case "cpg":
			if font := currentFont(f); font != nil && t.HasValue {
				font.Codepage = int(t.Value)
			}
		}
	case token.Data:
		if font := currentFont(f); font != nil {
			font.Name = strings.TrimSuffix(t.Text(src, off), ";")
		}
	}
	return nil
}

func bindFont(f *Frame, doc *model.Document, index int) {
	font := &model.Font{}
	doc.SetFont(index, font)
	f.State[fontTableKey] = font
}

func currentFont(f *Frame) *model.Font {
	font, _ := f.State[fontTableKey].(*model.Font)
	return font
}

// colorBoundaryKey records that the last color-table event was a ';'
// terminator, so the freshly started default at the end of the table can be
// dropped on close.
const colorBoundaryKey = "colortbl.boundary"

// colorTableHandler fills in the document's color table. The table opens
// with an implicit default color; every ';' in the data finalizes the
// current color and starts a fresh default.
type colorTableHandler struct{}

func (colorTableHandler) Handle(t token.Token, src string, off int, f *Frame) error {
	doc := f.Document()
	switch t.Kind {
	case token.GroupOpen:
		if doc.Colors == nil {
			doc.Colors = []model.Color{{}}
		}
	case token.GroupClose:
		if boundary, _ := f.State[colorBoundaryKey].(bool); boundary && len(doc.Colors) > 1 {
			doc.Colors = doc.Colors[:len(doc.Colors)-1]
		}
	case token.ControlWord:
		name := t.Name(src, off)
		switch name {
		case "":
			return nil // line break in the source
		case "red", "green", "blue":
			if len(doc.Colors) == 0 || !t.HasValue {
				return nil
			}
			c := &doc.Colors[len(doc.Colors)-1]
			switch name {
			case "red":
				c.R = uint8(t.Value)
			case "green":
				c.G = uint8(t.Value)
			case "blue":
				c.B = uint8(t.Value)
			}
			f.State[colorBoundaryKey] = false
		default:
			return fmt.Errorf("%w: \\%s at offset %d", ErrUnrecognizedInColorTable, name, off)
		}
	case token.Data:
		for _, b := range []byte(t.Text(src, off)) {
			if b == ';' {
				doc.Colors = append(doc.Colors, model.Color{})
				f.State[colorBoundaryKey] = true
			}
		}
	}
	return nil
}
