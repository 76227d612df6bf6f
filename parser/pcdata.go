package parser

import (
	"fmt"
	"strings"

	"github.com/Novlr/rtf2html/token"
)

// pcdataKey holds the accumulating text parts on the frame.
const pcdataKey = "pcdata.parts"

var pcdata = &pcdataHandler{}

// PCData returns the prefabricated handler for destinations whose body is
// plain text, such as \objclass. It accumulates Data tokens and, when the
// destination closes, writes the joined text onto the parent frame's state
// under the destination's name. Any token other than data or the internal
// newline control fails the parse.
func PCData() Handler {
	return pcdata
}

type pcdataHandler struct{}

func (pcdataHandler) Handle(t token.Token, src string, off int, f *Frame) error {
	switch t.Kind {
	case token.GroupOpen:
		f.State[pcdataKey] = []string(nil)
	case token.GroupClose:
		parts, _ := f.State[pcdataKey].([]string)
		joined := strings.Join(parts, "")
		if parent := f.Parent(); parent != nil {
			parent.State[f.Name] = joined
		} else {
			f.Document().Custom[f.Name] = joined
		}
	case token.Data:
		parts, _ := f.State[pcdataKey].([]string)
		f.State[pcdataKey] = append(parts, t.Text(src, off))
	case token.ControlWord:
		if t.Name(src, off) == "" {
			return nil // line breaks in the source carry no content
		}
		return fmt.Errorf("%w: %s %q at offset %d", ErrUnexpectedInPCData, t.Kind, t.Text(src, off), off)
	default:
		return fmt.Errorf("%w: %s at offset %d", ErrUnexpectedInPCData, t.Kind, off)
	}
	return nil
}
