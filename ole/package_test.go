package ole

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

// writeLPString appends a length-prefixed zero-terminated string.
func writeLPString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s)+1))
	buf.WriteString(s)
	buf.WriteByte(0)
}

func writeZString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

type embeddedItem struct {
	path string
	data string
}

// buildEmbedded assembles a type-3 package payload as raw bytes.
func buildEmbedded(t *testing.T, progid string, strs []string, items []embeddedItem) []byte {
	t.Helper()

	sec := &bytes.Buffer{}
	binary.Write(sec, binary.LittleEndian, uint16(len(strs)))
	for _, s := range strs {
		writeZString(sec, s)
	}
	binary.Write(sec, binary.LittleEndian, uint16(0))
	binary.Write(sec, binary.LittleEndian, uint16(TypeEmbedded))
	for _, item := range items {
		writeLPString(sec, item.path)
		binary.Write(sec, binary.LittleEndian, uint32(len(item.data)))
		sec.WriteString(item.data)
	}

	buf := &bytes.Buffer{}
	buf.Write([]byte{0x01, 0x05, 0x00, 0x00})
	binary.Write(buf, binary.LittleEndian, uint32(2))
	writeLPString(buf, progid)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(sec.Len()+2))
	buf.Write(sec.Bytes())
	binary.Write(buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}

// buildLinked assembles a type-1 package payload as raw bytes.
func buildLinked(t *testing.T, progid string, strs, paths []string) []byte {
	t.Helper()

	sec := &bytes.Buffer{}
	binary.Write(sec, binary.LittleEndian, uint16(len(strs)))
	for _, s := range strs {
		writeZString(sec, s)
	}
	binary.Write(sec, binary.LittleEndian, uint16(0))
	binary.Write(sec, binary.LittleEndian, uint16(TypeLinked))
	binary.Write(sec, binary.LittleEndian, uint16(len(paths)))
	for _, p := range paths {
		writeZString(sec, p)
	}

	buf := &bytes.Buffer{}
	buf.Write([]byte{0x01, 0x05, 0x00, 0x00})
	binary.Write(buf, binary.LittleEndian, uint32(2))
	writeLPString(buf, progid)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(sec.Len()+2))
	buf.Write(sec.Bytes())
	binary.Write(buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}

func decodeRaw(t *testing.T, raw []byte) (*Package, error) {
	t.Helper()
	src := hex.EncodeToString(raw)
	return DecodePackage(src, 0, len(src))
}

func TestDecodeEmbeddedPackage(t *testing.T) {
	raw := buildEmbedded(t, "Package",
		[]string{"report.txt", `C:\docs\report.txt`},
		[]embeddedItem{
			{path: `C:\docs\report.txt`, data: "hello, world"},
			{path: `readme`, data: "second"},
		})

	pkg, err := decodeRaw(t, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pkg.ProgID != "Package" {
		t.Errorf("ProgID = %q, want %q", pkg.ProgID, "Package")
	}
	if pkg.Type != TypeEmbedded {
		t.Errorf("Type = %d, want %d", pkg.Type, TypeEmbedded)
	}
	if pkg.Label != "report.txt" {
		t.Errorf("Label = %q, want %q", pkg.Label, "report.txt")
	}
	if len(pkg.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(pkg.Items))
	}
	if got := pkg.Items[0]; got.Path != `C:\docs\report.txt` || got.Name != "report.txt" || string(got.Data) != "hello, world" {
		t.Errorf("Items[0] = %+v", got)
	}
	if got := pkg.Items[1]; got.Path != "readme" || got.Name != "readme" || string(got.Data) != "second" {
		t.Errorf("Items[1] = %+v", got)
	}
}

func TestDecodeSkipsWhitespace(t *testing.T) {
	raw := buildEmbedded(t, "Package", []string{"a.bin", "b"},
		[]embeddedItem{{path: `x\a.bin`, data: "data"}})

	// break the hex text into short CRLF-separated lines, as \objdata
	// payloads are in real files
	enc := hex.EncodeToString(raw)
	var lines []string
	for len(enc) > 0 {
		n := 40
		if n > len(enc) {
			n = len(enc)
		}
		lines = append(lines, enc[:n])
		enc = enc[n:]
	}
	src := strings.Join(lines, "\r\n")

	pkg, err := DecodePackage(src, 0, len(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pkg.Items) != 1 || string(pkg.Items[0].Data) != "data" {
		t.Errorf("Items = %+v", pkg.Items)
	}
}

func TestDecodeLinkedPackage(t *testing.T) {
	raw := buildLinked(t, "Package",
		[]string{"notes.txt", "whatever"},
		[]string{`C:\files\~`, `D:\other\plain.txt`})

	pkg, err := decodeRaw(t, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pkg.Type != TypeLinked {
		t.Errorf("Type = %d, want %d", pkg.Type, TypeLinked)
	}
	if len(pkg.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(pkg.Items))
	}
	if got := pkg.Items[0]; got.Path != `C:\files\notes.txt` || got.Name != "notes.txt" || got.Data != nil {
		t.Errorf("Items[0] = %+v, want tilde replaced by label", got)
	}
	if got := pkg.Items[1]; got.Name != "plain.txt" {
		t.Errorf("Items[1].Name = %q, want %q", got.Name, "plain.txt")
	}
}

func TestDecodeErrors(t *testing.T) {
	good := buildEmbedded(t, "Package", []string{"a", "b"},
		[]embeddedItem{{path: "p", data: "d"}})

	tests := []struct {
		name   string
		mangle func([]byte) []byte
		want   error
	}{
		{"bad magic", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			b[0] = 0x02
			return b
		}, ErrBadMagic},
		{"bad header constant", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			b[4] = 9
			return b
		}, ErrBadConstant},
		{"string count out of range", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			// the string count is the first word after the total size
			b[32] = 12
			return b
		}, ErrSizeRange},
		{"truncated input", func(b []byte) []byte {
			return b[:len(b)/2]
		}, ErrOutOfData},
		{"total size too small", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			binary.LittleEndian.PutUint32(b[28:32], 1)
			return b
		}, ErrSizeRange},
		{"total size overstated", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			ts := binary.LittleEndian.Uint32(b[28:32])
			binary.LittleEndian.PutUint32(b[28:32], ts+8)
			return b
		}, ErrOutOfData},
		{"total size understated", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			ts := binary.LittleEndian.Uint32(b[28:32])
			binary.LittleEndian.PutUint32(b[28:32], ts-2)
			return b
		}, ErrSizeMismatch},
		{"unsupported type", func(b []byte) []byte {
			b = append([]byte(nil), b...)
			// the type word follows count, "a\0", "b\0" and the zero word
			b[40] = 7
			return b
		}, ErrBadType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeRaw(t, tt.mangle(good))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeBadHexDigit(t *testing.T) {
	src := "01zz0000"
	_, err := DecodePackage(src, 0, len(src))
	if !errors.Is(err, ErrBadHexDigit) {
		t.Errorf("error = %v, want ErrBadHexDigit", err)
	}
}

func TestDecodeEmptyRange(t *testing.T) {
	_, err := DecodePackage("", 0, 0)
	if !errors.Is(err, ErrOutOfData) {
		t.Errorf("error = %v, want ErrOutOfData", err)
	}
}

func TestDecodeBadStringTerminator(t *testing.T) {
	raw := buildEmbedded(t, "Package", []string{"a", "b"},
		[]embeddedItem{{path: "p", data: "d"}})
	// corrupt the zero terminator of the length-prefixed progid
	raw = append([]byte(nil), raw...)
	raw[12+len("Package")] = 'X'

	_, err := decodeRaw(t, raw)
	if !errors.Is(err, ErrUnterminated) {
		t.Errorf("error = %v, want ErrUnterminated", err)
	}
}
