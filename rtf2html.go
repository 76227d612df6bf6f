// Package rtf2html converts Rich Text Format documents to HTML.
//
// Basic usage:
//
//	html, err := rtf2html.ToHTML(rtfText, "", nil, rtf2html.HTMLVersion)
//	if err != nil {
//	    // handle error
//	}
//
// Embedded pictures and OLE "Package" objects are extracted as side-channel
// files when a sink is supplied:
//
//	sink := &rtf2html.FileSink{}
//	html, err := rtf2html.ToHTML(rtfText, "attachments/", sink, rtf2html.HTMLVersion)
//
// For advanced use cases, the lower-level parser package is also available:
// embedders can register their own destination handlers and walk the
// document model directly.
package rtf2html

import (
	"errors"
	"fmt"

	"github.com/Novlr/rtf2html/htmlconv"
	"github.com/Novlr/rtf2html/parser"
)

// HTMLVersion is the rendering contract version this package implements.
const HTMLVersion = 2

// ErrUnsupportedHTMLVersion reports a conversion request for a rendering
// version other than HTMLVersion.
var ErrUnsupportedHTMLVersion = errors.New("rtf2html: unsupported HTML version")

// Warning describes a non-fatal anomaly encountered during conversion, such
// as an undecodable embedded picture.
type Warning string

// ExtractedFile is one side-channel output of a conversion: an embedded
// picture or an OLE package item.
type ExtractedFile struct {
	Name string
	Data []byte
}

// FileSink collects files extracted during conversion. It implements
// htmlconv.Sink.
type FileSink struct {
	Files []ExtractedFile
}

// Add appends a file to the sink.
func (s *FileSink) Add(name string, data []byte) {
	s.Files = append(s.Files, ExtractedFile{Name: name, Data: data})
}

// ToHTML converts rtf to HTML. baseURL is prepended to generated file names
// in hyperlink HREF and IMG SRC attributes. If sink is non-nil, extracted
// package items and pictures are appended to it. version must equal
// HTMLVersion.
func ToHTML(rtf, baseURL string, sink *FileSink, version int) (string, error) {
	html, _, err := Convert(rtf, baseURL, sink, version)
	return html, err
}

// Convert is ToHTML plus the warnings collected during conversion.
func Convert(rtf, baseURL string, sink *FileSink, version int) (string, []Warning, error) {
	if version != HTMLVersion {
		return "", nil, fmt.Errorf("%w: %d", ErrUnsupportedHTMLVersion, version)
	}

	p, err := parser.New(rtf)
	if err != nil {
		return "", nil, err
	}

	var out htmlconv.Sink
	if sink != nil {
		out = sink
	}
	conv := htmlconv.New(baseURL, out)
	conv.Install(p)

	doc, err := p.Document()
	if err != nil {
		return "", nil, err
	}

	var warnings []Warning
	for _, w := range conv.Warnings() {
		warnings = append(warnings, Warning(w))
	}
	return doc.HTML, warnings, nil
}
