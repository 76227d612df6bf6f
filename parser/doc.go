// Package parser implements the destination-dispatch RTF parser.
//
// The parser walks an RTF source string one token at a time, maintaining a
// stack of destination frames: one frame per brace group it descends into.
// Each frame is addressed by its path, the semicolon-joined sequence of
// ancestor destination names (";rtf;fonttbl;f").
//
// Handlers are registered against a destination name, an exact path, or a
// regular expression matched against paths. When a group opens, the parser
// resolves the ordered handler list for the new frame's path, caching the
// result per path; the cache is invalidated on every registration. A frame
// with no handlers is skipped wholesale when it was opened with the \*
// ignorable marker, and is a parse error otherwise.
//
// Every resolved handler is invoked once with the opening brace, once per
// ordinary token while the frame is active, and once with the closing brace,
// in resolution order: name registrations first, then exact-path ones, then
// pattern ones, each group in registration order. Handlers mutate their frame, the document root, or
// the stack; writing a computed value onto the parent frame's state is the
// idiomatic way for a destination to return a result, as the PCDATA helper
// does.
//
// Parsing is single-threaded and synchronous; a parser instance owns its
// source, stack, registry and document for its lifetime and runs to
// completion on the caller's goroutine.
package parser
