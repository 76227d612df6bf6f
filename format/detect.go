// Package format provides input sniffing for RTF sources.
package format

import (
	"bytes"

	"github.com/Novlr/rtf2html/token"
)

// Kind represents a recognized input flavor.
type Kind int

const (
	// Unknown indicates input that does not look like RTF.
	Unknown Kind = iota
	// RTF indicates a plain RTF document.
	RTF
	// EncapsulatedHTML indicates RTF produced from an HTML document
	// (\fromhtml).
	EncapsulatedHTML
	// EncapsulatedText indicates RTF produced from a plain text document
	// (\fromtext).
	EncapsulatedText
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case RTF:
		return "RTF"
	case EncapsulatedHTML:
		return "EncapsulatedHTML"
	case EncapsulatedText:
		return "EncapsulatedText"
	}
	return "Unknown"
}

// maxSniffTokens bounds the encapsulation probe: a de-encapsulating reader
// inspects no more than the first 10 group marks and control words.
const maxSniffTokens = 10

// Detect reports whether data begins an RTF document and, for RTF input,
// which encapsulation flavor its leading control words declare.
func Detect(data []byte) Kind {
	if !bytes.HasPrefix(data, []byte(`{\rtf`)) {
		return Unknown
	}
	return sniffEncapsulation(string(data))
}

func sniffEncapsulation(src string) Kind {
	off, seen := 0, 0
	for off < len(src) && seen < maxSniffTokens {
		t := token.Next(src, off)
		if t.Length == 0 {
			break
		}
		switch t.Kind {
		case token.ControlWord:
			switch t.Name(src, off) {
			case "fromhtml":
				return EncapsulatedHTML
			case "fromtext":
				return EncapsulatedText
			}
			seen++
		case token.GroupOpen:
			seen++
		}
		off += int(t.Length)
	}
	return RTF
}
