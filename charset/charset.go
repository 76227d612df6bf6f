// Package charset maps RTF character-set and code-page identifiers to
// golang.org/x/text encodings, and converts document bytes to UTF-8.
package charset

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// FromName returns the encoding declared by an RTF character-set control
// word (\ansi, \mac, \pc, \pca).
func FromName(name string) (encoding.Encoding, bool) {
	switch name {
	case "ansi":
		return charmap.Windows1252, true
	case "mac":
		return charmap.Macintosh, true
	case "pc":
		return charmap.CodePage437, true
	case "pca":
		return charmap.CodePage850, true
	}
	return nil, false
}

// FromCodepage returns the encoding for an \ansicpg or \cpg value.
func FromCodepage(cp int) (encoding.Encoding, bool) {
	switch cp {
	case 437: // United States IBM
		return charmap.CodePage437, true
	case 708: // Arabic (ASMO 708)
		return charmap.ISO8859_6, true
	case 819: // Windows 3.1 (US and Western Europe)
		return charmap.ISO8859_1, true
	case 850: // IBM multilingual
		return charmap.CodePage850, true
	case 852: // Eastern European
		return charmap.CodePage852, true
	case 860: // Portuguese
		return charmap.CodePage860, true
	case 862: // Hebrew
		return charmap.CodePage862, true
	case 863: // French Canadian
		return charmap.CodePage863, true
	case 865: // Norwegian
		return charmap.CodePage865, true
	case 866: // Cyrillic DOS
		return charmap.CodePage866, true
	case 874: // Thai
		return charmap.Windows874, true
	case 932: // Japanese
		return japanese.ShiftJIS, true
	case 936: // Simplified Chinese
		return simplifiedchinese.GBK, true
	case 949: // Korean
		return korean.EUCKR, true
	case 950: // Traditional Chinese
		return traditionalchinese.Big5, true
	case 1250:
		return charmap.Windows1250, true
	case 1251:
		return charmap.Windows1251, true
	case 1252:
		return charmap.Windows1252, true
	case 1253:
		return charmap.Windows1253, true
	case 1254:
		return charmap.Windows1254, true
	case 1255:
		return charmap.Windows1255, true
	case 1256:
		return charmap.Windows1256, true
	case 1257:
		return charmap.Windows1257, true
	case 1258:
		return charmap.Windows1258, true
	case 1361: // Johab; closest supported Korean encoding
		return korean.EUCKR, true
	}
	return nil, false
}

// FromFontCharset returns the encoding for an \fcharset value.
func FromFontCharset(n int) (encoding.Encoding, bool) {
	switch n {
	case 0, 1, 2: // ANSI, default, symbol
		return charmap.Windows1252, true
	case 77: // Macintosh
		return charmap.Macintosh, true
	case 128: // Shift JIS
		return japanese.ShiftJIS, true
	case 129, 130: // Hangul, Johab
		return korean.EUCKR, true
	case 134: // GB2312
		return simplifiedchinese.GBK, true
	case 136: // Big5
		return traditionalchinese.Big5, true
	case 161: // Greek
		return charmap.Windows1253, true
	case 162: // Turkish
		return charmap.Windows1254, true
	case 163: // Vietnamese
		return charmap.Windows1258, true
	case 177, 181: // Hebrew
		return charmap.Windows1255, true
	case 178, 179, 180: // Arabic
		return charmap.Windows1256, true
	case 186: // Baltic
		return charmap.Windows1257, true
	case 204: // Russian
		return charmap.Windows1251, true
	case 222: // Thai
		return charmap.Windows874, true
	case 238: // Eastern European
		return charmap.Windows1250, true
	case 254, 255: // PC 437, OEM
		return charmap.CodePage437, true
	}
	return nil, false
}

// Decode converts b from enc to UTF-8. A nil enc returns b unchanged.
func Decode(b []byte, enc encoding.Encoding) ([]byte, error) {
	if enc == nil {
		return b, nil
	}
	return enc.NewDecoder().Bytes(b)
}
