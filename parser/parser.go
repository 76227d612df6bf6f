package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Novlr/rtf2html/model"
	"github.com/Novlr/rtf2html/token"
)

// Option configures a Parser.
type Option func(*Parser)

// Strict requests stricter validation. The flag is accepted and recorded but
// currently has no effect.
func Strict() Option {
	return func(p *Parser) { p.strict = true }
}

// SuppressDefaults skips registering the built-in meta, font-table and
// color-table handlers.
func SuppressDefaults() Option {
	return func(p *Parser) { p.suppressDefaults = true }
}

// Parser walks an RTF source string, maintains the destination stack, and
// routes tokens to registered handlers.
type Parser struct {
	src   string
	pos   int
	doc   *model.Document
	stack *Stack
	reg   registry

	strict           bool
	suppressDefaults bool
	done             bool
	err              error
}

// New constructs a parser over src. Unless SuppressDefaults is given, the
// built-in handlers for the ;rtf meta destination, the font table and the
// color table are registered.
func New(src string, opts ...Option) (*Parser, error) {
	if src == "" {
		return nil, ErrMissingSource
	}
	p := &Parser{
		src: src,
		doc: model.NewDocument(),
		reg: newRegistry(),
	}
	p.stack = &Stack{doc: p.doc}
	for _, opt := range opts {
		opt(p)
	}
	if !p.suppressDefaults {
		p.Register(";rtf", &metaHandler{})
		fonts := &fontTableHandler{}
		p.Register(";rtf;fonttbl", fonts)
		p.Register(";rtf;fonttbl;f", fonts)
		p.Register(";rtf;colortbl", &colorTableHandler{})
	}
	return p, nil
}

// Register binds h to a destination. A destination containing a semicolon is
// an exact stack path (";rtf;fonttbl"); otherwise it is a destination name
// matched at any depth. Duplicate (destination, handler) pairs are ignored.
// Registering invalidates the resolver cache.
func (p *Parser) Register(destination string, h Handler) {
	if strings.Contains(destination, ";") {
		p.reg.addPath(destination, h)
		return
	}
	p.reg.addName(destination, h)
}

// RegisterPattern binds h to every destination whose path matches re.
func (p *Parser) RegisterPattern(re *regexp.Regexp, h Handler) {
	p.reg.addPattern(re, h)
}

// Document runs the parse to completion and returns the document root. The
// first structural or handler error aborts the parse and is returned on this
// and every later call.
func (p *Parser) Document() (*model.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.done {
		if err := p.run(); err != nil {
			p.err = err
			return nil, err
		}
		p.done = true
	}
	return p.doc, nil
}

// Snapshot returns the document under construction without advancing the
// parse.
func (p *Parser) Snapshot() *model.Document {
	return p.doc
}

// Stack exposes the destination stack.
func (p *Parser) Stack() *Stack {
	return p.stack
}

func (p *Parser) run() error {
	for p.pos < len(p.src) {
		t := token.Next(p.src, p.pos)
		if t.Length == 0 {
			break
		}
		switch t.Kind {
		case token.GroupOpen:
			if err := p.openGroup(t); err != nil {
				return err
			}
		case token.GroupClose:
			cur := p.stack.Current()
			if cur == nil {
				return fmt.Errorf("%w at offset %d", ErrTooManyCloses, p.pos)
			}
			if err := p.dispatch(cur, t, p.pos); err != nil {
				return err
			}
			p.stack.pop()
			p.pos++
		default:
			// tokens outside the outermost group drop silently
			if cur := p.stack.Current(); cur != nil {
				if err := p.dispatch(cur, t, p.pos); err != nil {
					return err
				}
			}
			p.pos += int(t.Length)
		}
	}
	return nil
}

// openGroup handles a { token: it reads the optional \* marker and the
// mandatory destination control word, resolves handlers for the new frame's
// path, and either pushes the frame, skips the subtree (ignorable with no
// handlers), or fails.
func (p *Parser) openGroup(brace token.Token) error {
	bps := p.pos
	off := bps + 1

	ignorable := false
	next := token.Next(p.src, off)
	if next.Kind == token.Ignorable {
		ignorable = true
		off += int(next.Length)
		next = token.Next(p.src, off)
	}
	if next.Kind != token.ControlWord {
		return fmt.Errorf("%w: %s at offset %d", ErrUnexpectedAfterOpen, next.Kind, off)
	}

	name := next.Name(p.src, off)
	path := ";" + name
	if parent := p.stack.Current(); parent != nil {
		path = parent.Path + ";" + name
	}

	handlers := p.reg.resolve(name, path)
	if len(handlers) == 0 {
		if ignorable {
			p.pos = token.SkipBlock(p.src, bps+1, 0)
			return nil
		}
		return fmt.Errorf("%w: %s at offset %d", ErrUnhandledDestination, path, bps)
	}

	f := &Frame{
		OpenToken:  brace,
		OpenOffset: bps,
		Word:       next,
		WordOffset: off,
		Name:       name,
		Path:       path,
		Ignorable:  ignorable,
		State:      make(map[string]any),
		handlers:   handlers,
	}
	p.stack.push(f)

	if err := p.dispatch(f, brace, bps); err != nil {
		return err
	}

	// handlers see everything after the control word as ordinary tokens;
	// the word itself stays reachable through the frame
	p.pos = off + int(next.Length)
	return nil
}

func (p *Parser) dispatch(f *Frame, t token.Token, off int) error {
	for _, h := range f.handlers {
		if err := h.Handle(t, p.src, off, f); err != nil {
			return err
		}
	}
	return nil
}
