package htmlconv

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/Novlr/rtf2html/ole"
	"github.com/Novlr/rtf2html/parser"
	"github.com/Novlr/rtf2html/token"
)

// bodyDestinations are the group-leading control words the converter treats
// as ordinary formatted body content.
var bodyDestinations = []string{
	"rtf", "b", "i", "ul", "ulnone", "strike", "v", "super", "sub",
	"nosupersub", "plain", "f", "fs", "cf", "cb", "highlight", "lang",
	"qc", "ql", "qr", "qj", "pard", "par", "u", "uc",
	"pntext", "listtext", "result", "fldrslt",
}

// suppressedDestinations are consumed without emitting anything.
var suppressedDestinations = []string{
	"stylesheet", "info", "header", "footer", "headerl", "headerr",
	"headerf", "footerl", "footerr", "footerf", "ftnsep", "ftnsepc",
	"nonshppict",
}

// suppressedSubtrees keeps descendants of suppressed destinations resolvable
// so their groups parse without leaking output.
var suppressedSubtrees = regexp.MustCompile(
	`^;rtf;(stylesheet|info|header|footer|headerl|headerr|headerf|footerl|footerr|footerf|ftnsep|ftnsepc|nonshppict)(;|$)`)

// Install registers the converter's handler set on p.
func (c *Converter) Install(p *parser.Parser) {
	body := &bodyHandler{c: c}
	for _, name := range bodyDestinations {
		p.Register(name, body)
	}

	sup := &suppressHandler{c: c}
	for _, name := range suppressedDestinations {
		p.Register(name, sup)
	}
	p.RegisterPattern(suppressedSubtrees, sup)

	p.Register("shppict", &passHandler{})
	p.Register("field", &passHandler{})
	p.Register("fldinst", &instHandler{})
	p.Register("pict", &pictHandler{c: c})
	p.Register("object", &objectHandler{c: c})
	p.Register("objclass", parser.PCData())
	p.Register("objdata", &objdataHandler{})
}

// underTables reports paths inside the font or color table, where body
// emission must stay quiet.
func underTables(path string) bool {
	return strings.Contains(path, ";fonttbl") || strings.Contains(path, ";colortbl")
}

// bodyHandler feeds ordinary body tokens into the converter's emission
// state. The same handler serves the root ;rtf destination and every
// formatting group.
type bodyHandler struct {
	c *Converter
}

func (h *bodyHandler) Handle(t token.Token, src string, off int, f *parser.Frame) error {
	if underTables(f.Path) {
		return nil
	}
	c := h.c
	switch t.Kind {
	case token.GroupOpen:
		if f.Name == "rtf" {
			c.doc = f.Document()
		}
		c.pushState()
		if f.Name == "fldrslt" {
			c.openAnchor(f)
		}
		c.controlWord(f.Name, f.Word)
	case token.GroupClose:
		if f.Name == "fldrslt" {
			c.closeAnchor()
		}
		c.popState()
		if f.Name == "rtf" {
			c.finish(f.Document())
		}
	case token.Data:
		c.text(t.Text(src, off))
	case token.Character:
		c.charByte(byte(t.Value))
	case token.Symbol:
		c.symbol(byte(t.Value))
	case token.ControlWord:
		c.controlWord(t.Name(src, off), t)
	}
	return nil
}

// suppressHandler consumes a subtree without output.
type suppressHandler struct {
	c *Converter
}

func (h *suppressHandler) Handle(t token.Token, _ string, _ int, _ *parser.Frame) error {
	switch t.Kind {
	case token.GroupOpen:
		h.c.flush()
		h.c.suppress++
	case token.GroupClose:
		if h.c.suppress > 0 {
			h.c.suppress--
		}
	}
	return nil
}

// passHandler keeps a destination resolvable without acting on its tokens.
type passHandler struct{}

func (passHandler) Handle(token.Token, string, int, *parser.Frame) error { return nil }

// instHandler captures field instruction text onto the field frame. Unlike
// the strict PCDATA helper it tolerates control words and symbols, which
// appear in HYPERLINK switches.
type instHandler struct{}

const instPartsKey = "fldinst.parts"

func (instHandler) Handle(t token.Token, src string, off int, f *parser.Frame) error {
	switch t.Kind {
	case token.Data:
		parts, _ := f.State[instPartsKey].([]string)
		f.State[instPartsKey] = append(parts, t.Text(src, off))
	case token.Symbol:
		parts, _ := f.State[instPartsKey].([]string)
		f.State[instPartsKey] = append(parts, string(byte(t.Value)))
	case token.GroupClose:
		parts, _ := f.State[instPartsKey].([]string)
		if parent := f.Parent(); parent != nil {
			parent.State["fldinst"] = strings.Join(parts, "")
		}
	}
	return nil
}

// State keys shared between the object sub-destinations and their parent
// frame.
const (
	objClassKey     = "objclass"
	objDataBeginKey = "objdata.begin"
	objDataEndKey   = "objdata.end"
)

// objdataHandler records the hex payload span of an \objdata destination on
// the enclosing object frame.
type objdataHandler struct{}

func (objdataHandler) Handle(t token.Token, _ string, off int, f *parser.Frame) error {
	switch t.Kind {
	case token.Data:
		if _, ok := f.State[objDataBeginKey]; !ok {
			f.State[objDataBeginKey] = off
		}
		f.State[objDataEndKey] = off + int(t.Length)
	case token.GroupClose:
		parent := f.Parent()
		if parent == nil {
			return nil
		}
		if begin, ok := f.State[objDataBeginKey]; ok {
			parent.State[objDataBeginKey] = begin
			parent.State[objDataEndKey] = f.State[objDataEndKey]
		}
	}
	return nil
}

// objectHandler decodes embedded OLE "Package" objects when the object
// closes: extracted items go to the sink and each becomes a hyperlink in
// the output. Objects of any other class are left to their \result
// destination.
type objectHandler struct {
	c *Converter
}

func (h *objectHandler) Handle(t token.Token, src string, _ int, f *parser.Frame) error {
	if t.Kind != token.GroupClose {
		return nil
	}
	c := h.c
	if c.suppress > 0 {
		return nil
	}
	class, _ := f.State[objClassKey].(string)
	if class != "Package" {
		return nil
	}
	begin, ok := f.State[objDataBeginKey].(int)
	if !ok {
		return nil
	}
	end, _ := f.State[objDataEndKey].(int)

	pkg, err := ole.DecodePackage(src, begin, end)
	if err != nil {
		return err
	}
	for _, item := range pkg.Items {
		if item.Data != nil && c.sink != nil {
			c.sink.Add(item.Name, item.Data)
		}
		c.flush()
		name := xhtml.EscapeString(item.Name)
		c.write(`<A HREF="` + xhtml.EscapeString(c.href(item.Name)) + `">` + name + `</A>`)
	}
	return nil
}

// State keys private to the pict handler.
const (
	pictTypeKey  = "pict.type"
	pictBeginKey = "pict.begin"
	pictEndKey   = "pict.end"
	pictWKey     = "pict.w"
	pictHKey     = "pict.h"
)

// pictHandler extracts embedded pictures: the hex payload becomes a sink
// file and an IMG tag referencing it is emitted.
type pictHandler struct {
	c *Converter
}

func (h *pictHandler) Handle(t token.Token, src string, off int, f *parser.Frame) error {
	switch t.Kind {
	case token.ControlWord:
		switch name := t.Name(src, off); name {
		case "pngblip":
			f.State[pictTypeKey] = "png"
		case "jpegblip":
			f.State[pictTypeKey] = "jpg"
		case "dibitmap", "wbitmap":
			f.State[pictTypeKey] = "bmp"
		case "wmetafile":
			f.State[pictTypeKey] = "wmf"
		case "emfblip":
			f.State[pictTypeKey] = "emf"
		case "picwgoal":
			if t.HasValue {
				f.State[pictWKey] = twipsToPixels(int(t.Value))
			}
		case "pichgoal":
			if t.HasValue {
				f.State[pictHKey] = twipsToPixels(int(t.Value))
			}
		}
	case token.Data:
		if _, ok := f.State[pictBeginKey]; !ok {
			f.State[pictBeginKey] = off
		}
		f.State[pictEndKey] = off + int(t.Length)
	case token.GroupClose:
		return h.close(f, src)
	}
	return nil
}

func (h *pictHandler) close(f *parser.Frame, src string) error {
	c := h.c
	if c.suppress > 0 {
		return nil
	}
	begin, ok := f.State[pictBeginKey].(int)
	if !ok {
		return nil
	}
	end, _ := f.State[pictEndKey].(int)

	var hexText strings.Builder
	for i := begin; i < end; i++ {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
		default:
			hexText.WriteByte(src[i])
		}
	}
	data, err := hex.DecodeString(hexText.String())
	if err != nil {
		c.warn("undecodable picture data at offset %d: %v", begin, err)
		return nil
	}

	ext, _ := f.State[pictTypeKey].(string)
	if ext == "" {
		ext = sniffImageType(data)
	}
	c.images++
	name := fmt.Sprintf("image%d.%s", c.images, ext)
	if c.sink != nil {
		c.sink.Add(name, data)
	}

	c.flush()
	var img strings.Builder
	img.WriteString(`<IMG SRC="` + xhtml.EscapeString(c.href(name)) + `"`)
	if w, hgt, ok := imageSize(data); ok {
		fmt.Fprintf(&img, " WIDTH=%d HEIGHT=%d", w, hgt)
	} else {
		if w, ok := f.State[pictWKey].(int); ok {
			fmt.Fprintf(&img, " WIDTH=%d", w)
		}
		if hgt, ok := f.State[pictHKey].(int); ok {
			fmt.Fprintf(&img, " HEIGHT=%d", hgt)
		}
	}
	img.WriteString(">")
	c.write(img.String())
	return nil
}

// twipsToPixels converts twentieths of a point to pixels at 96 DPI.
func twipsToPixels(twips int) int {
	return twips * 96 / 1440
}
