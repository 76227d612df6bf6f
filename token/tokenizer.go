// Package token implements the RTF tokenizer: a single left-to-right scan
// over RTF source bytes producing fixed-shape token records.
//
// The tokenizer is stateless. Next reads one token at (source, offset) and
// the caller advances its own cursor by the token's Length; summing the
// lengths of a full scan always reproduces the source length exactly.
// Malformed input never fails the scan: it comes back as Invalid tokens
// whose length still moves the cursor forward.
package token

// Next scans src at off and returns the next token. It never reads beyond
// len(src) and never fails. At or past the end of src it returns the zero
// Token (Invalid, Length 0).
func Next(src string, off int) Token {
	if off < 0 || off >= len(src) {
		return Token{}
	}
	switch c := src[off]; {
	case c == '{':
		return Token{Kind: GroupOpen, Length: 1}
	case c == '}':
		return Token{Kind: GroupClose, Length: 1}
	case c == '\\':
		return nextControl(src, off)
	case c == '\r' || c == '\n':
		return nextNewline(src, off)
	default:
		return nextData(src, off)
	}
}

// nextControl scans a backslash-introduced construct: a control word, a
// control symbol, an ignorable marker or a hex character escape.
func nextControl(src string, off int) Token {
	i := off + 1
	for i < len(src) && isLower(src[i]) {
		i++
	}
	n := i - off - 1

	if n == 0 {
		if i >= len(src) {
			// dangling backslash at the very end of the source
			return Token{Kind: Invalid, Length: 1}
		}
		switch c := src[i]; c {
		case '*':
			return Token{Kind: Ignorable, Length: 2}
		case '\'':
			return nextHex(src, off)
		case '\\', '-', ':', '_', '{', '|', '}', '~':
			return Token{Kind: Symbol, Length: 2, Value: int16(c), HasValue: true}
		default:
			return Token{Kind: Invalid, Length: 2}
		}
	}

	if n > MaxNameLen {
		l := n + 1
		if l > MaxLength {
			l = MaxLength
		}
		return Token{Kind: Invalid, Length: uint8(l)}
	}

	if i < len(src) && (src[i] == '-' || isDigit(src[i])) {
		neg := src[i] == '-'
		if neg {
			i++
		}
		// Track the parameter modulo 2^16 while scanning so that
		// arbitrarily long digit runs wrap exactly like a signed
		// 16-bit truncation of the full decimal value.
		var m uint32
		for i < len(src) && isDigit(src[i]) && i-off < MaxLength {
			m = (m*10 + uint32(src[i]-'0')) % 65536
			i++
		}
		if i < len(src) && src[i] == ' ' && i-off < MaxLength {
			i++
		}
		u := uint16(m)
		if neg {
			u = -u
		}
		return Token{
			Kind:     ControlWord,
			Length:   uint8(i - off),
			NameLen:  uint8(n),
			Value:    int16(u),
			HasValue: true,
		}
	}

	// a single trailing space delimits the word and is consumed with it
	if i < len(src) && src[i] == ' ' {
		i++
	}
	return Token{Kind: ControlWord, Length: uint8(i - off), NameLen: uint8(n)}
}

// nextHex scans \'HH. Truncated input yields Invalid spanning what remains;
// a bad digit yields Invalid of length 4 regardless of which digit failed.
func nextHex(src string, off int) Token {
	remaining := len(src) - (off + 2)
	if remaining < 2 {
		return Token{Kind: Invalid, Length: uint8(remaining + 2)}
	}
	hi := hexVal(src[off+2])
	lo := hexVal(src[off+3])
	if hi < 0 || lo < 0 {
		return Token{Kind: Invalid, Length: 4}
	}
	return Token{Kind: Character, Length: 4, Value: int16(hi<<4 | lo), HasValue: true}
}

// nextNewline folds a run of CR/LF bytes into the internal newline control,
// a nameless ControlWord of value 13. Handlers generally ignore it.
func nextNewline(src string, off int) Token {
	i := off
	for i < len(src) && (src[i] == '\r' || src[i] == '\n') && i-off < MaxLength {
		i++
	}
	return Token{Kind: ControlWord, Length: uint8(i - off), Value: 13, HasValue: true}
}

func nextData(src string, off int) Token {
	i := off
	for i < len(src) && i-off < MaxLength {
		switch src[i] {
		case '\\', '{', '}', '\r', '\n':
			return Token{Kind: Data, Length: uint8(i - off)}
		}
		i++
	}
	return Token{Kind: Data, Length: uint8(i - off)}
}

func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
