package parser

import (
	"regexp"
	"testing"

	"github.com/Novlr/rtf2html/token"
)

type tagged struct{ id string }

func (*tagged) Handle(token.Token, string, int, *Frame) error { return nil }

func ids(list []Handler) []string {
	out := make([]string, 0, len(list))
	for _, h := range list {
		out = append(out, h.(*tagged).id)
	}
	return out
}

func TestResolveOrder(t *testing.T) {
	byName := &tagged{id: "name"}
	byPath := &tagged{id: "path"}
	byPattern := &tagged{id: "pattern"}

	r := newRegistry()
	r.addPattern(regexp.MustCompile(`;fonttbl$`), byPattern)
	r.addPath(";rtf;fonttbl", byPath)
	r.addName("fonttbl", byName)

	got := ids(r.resolve("fonttbl", ";rtf;fonttbl"))
	want := []string{"name", "path", "pattern"}
	if len(got) != len(want) {
		t.Fatalf("resolve = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resolve[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveDeduplicatesByIdentity(t *testing.T) {
	h := &tagged{id: "only"}

	r := newRegistry()
	r.addName("dest", h)
	r.addPath(";rtf;dest", h)
	r.addPattern(regexp.MustCompile(`dest`), h)

	if got := r.resolve("dest", ";rtf;dest"); len(got) != 1 {
		t.Errorf("resolve returned %d handlers, want 1", len(got))
	}
}

func TestDuplicateRegistrationIgnored(t *testing.T) {
	h := &tagged{id: "h"}

	r := newRegistry()
	r.addName("dest", h)
	r.addName("dest", h)

	if got := len(r.byName["dest"]); got != 1 {
		t.Errorf("byName has %d entries, want 1", got)
	}
}

func TestResolveCachesEmptyResult(t *testing.T) {
	r := newRegistry()

	if got := r.resolve("nope", ";rtf;nope"); len(got) != 0 {
		t.Fatalf("resolve = %v, want empty", got)
	}
	if _, ok := r.cache[";rtf;nope"]; !ok {
		t.Error("empty resolution was not cached")
	}
}

// TestRegistrationInvalidatesCache checks a handler registered after a
// lookup is still found: the cache cannot go stale.
func TestRegistrationInvalidatesCache(t *testing.T) {
	r := newRegistry()
	if got := r.resolve("late", ";rtf;late"); len(got) != 0 {
		t.Fatalf("resolve = %v, want empty", got)
	}

	r.addName("late", &tagged{id: "late"})

	if got := r.resolve("late", ";rtf;late"); len(got) != 1 {
		t.Errorf("resolve after registration = %d handlers, want 1", len(got))
	}
}

func TestRegisterTreatsSemicolonAsPath(t *testing.T) {
	p, err := New(`{\rtf1 x}`, SuppressDefaults())
	if err != nil {
		t.Fatal(err)
	}
	h := &tagged{id: "h"}
	p.Register(";rtf;fonttbl", h)
	p.Register("fonttbl", h)

	if len(p.reg.byPath[";rtf;fonttbl"]) != 1 {
		t.Error("path registration missing")
	}
	if len(p.reg.byName["fonttbl"]) != 1 {
		t.Error("name registration missing")
	}
}

func TestPatternMatchesDescendants(t *testing.T) {
	var seen []string
	collect := HandlerFunc(func(tok token.Token, src string, off int, f *Frame) error {
		if tok.Kind == token.GroupOpen {
			seen = append(seen, f.Path)
		}
		return nil
	})

	p, err := New(`{\rtf1{\stylesheet{\keep a}{\also b}}}`, SuppressDefaults())
	if err != nil {
		t.Fatal(err)
	}
	p.Register("rtf", nop{})
	p.RegisterPattern(regexp.MustCompile(`^;rtf;stylesheet(;|$)`), collect)

	if _, err := p.Document(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{";rtf;stylesheet", ";rtf;stylesheet;keep", ";rtf;stylesheet;also"}
	if len(seen) != len(want) {
		t.Fatalf("paths = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("path[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}
