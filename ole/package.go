// Package ole decodes the hex-encoded payload of RTF \objdata destinations
// whose object class is "Package" into a list of embedded files.
//
// The binary grammar is reverse engineered from packages written by the
// Windows packager; the decoder is intentionally strict about magic values
// and byte accounting, and reports the hex-cursor offset on every mismatch
// so unknown variants can be diagnosed instead of silently tolerated.
package ole

import (
	"errors"
	"fmt"
	"strings"
)

// Decode failures. Every error wraps one of these sentinels.
var (
	ErrOutOfData     = errors.New("rtf/ole: out of data")
	ErrBadHexDigit   = errors.New("rtf/ole: bad hex digit")
	ErrBadMagic      = errors.New("rtf/ole: bad magic")
	ErrBadConstant   = errors.New("rtf/ole: unexpected constant")
	ErrUnterminated  = errors.New("rtf/ole: unterminated string")
	ErrBadTerminator = errors.New("rtf/ole: bad terminator")
	ErrSizeRange     = errors.New("rtf/ole: size out of range")
	ErrSizeMismatch  = errors.New("rtf/ole: data does not match declared size")
	ErrBadType       = errors.New("rtf/ole: unsupported OLE type")
)

const (
	packageMagic = 0x01050000
	maxTotalSize = 1 << 20
)

// OLE package flavors.
const (
	TypeLinked   = 1 // items reference files by path only
	TypeEmbedded = 3 // items carry their content
)

// File is one item carried by a Package.
type File struct {
	Path string
	Name string // basename of Path, using \ as the separator
	Data []byte // nil for linked items
}

// Package is the decoded payload of an embedded "Package" object.
type Package struct {
	ProgID    string
	TotalSize uint32
	Strings   []string
	Label     string
	Type      uint16
	Items     []File
}

// DecodePackage decodes the hex text in src[begin:end). Whitespace between
// hex digits is skipped anywhere in the payload.
func DecodePackage(src string, begin, end int) (*Package, error) {
	r := &hexReader{src: src, pos: begin, end: end}

	magic, err := r.u32be()
	if err != nil {
		return nil, err
	}
	if magic != packageMagic {
		return nil, fmt.Errorf("%w: %#08x at offset %d", ErrBadMagic, magic, r.pos)
	}
	header, err := r.u32le()
	if err != nil {
		return nil, err
	}
	if header != 2 {
		return nil, fmt.Errorf("%w: %d at offset %d", ErrBadConstant, header, r.pos)
	}

	pkg := &Package{}
	if pkg.ProgID, err = r.lpstring(); err != nil {
		return nil, err
	}

	// two reserved little-endian words
	if _, err = r.u32le(); err != nil {
		return nil, err
	}
	if _, err = r.u32le(); err != nil {
		return nil, err
	}

	if pkg.TotalSize, err = r.u32le(); err != nil {
		return nil, err
	}
	if pkg.TotalSize < 2 || pkg.TotalSize > maxTotalSize {
		return nil, fmt.Errorf("%w: total size %d at offset %d", ErrSizeRange, pkg.TotalSize, r.pos)
	}

	// everything from here on counts toward the declared total size
	r.count = 0

	n, err := r.u16le()
	if err != nil {
		return nil, err
	}
	if n < 2 || n > 10 {
		return nil, fmt.Errorf("%w: string count %d at offset %d", ErrSizeRange, n, r.pos)
	}
	for i := 0; i < int(n); i++ {
		s, err := r.zstring()
		if err != nil {
			return nil, err
		}
		pkg.Strings = append(pkg.Strings, s)
	}
	pkg.Label = pkg.Strings[0]

	term, err := r.u16le()
	if err != nil {
		return nil, err
	}
	if term != 0 {
		return nil, fmt.Errorf("%w: %#04x after string table at offset %d", ErrBadTerminator, term, r.pos)
	}

	if pkg.Type, err = r.u16le(); err != nil {
		return nil, err
	}

	switch pkg.Type {
	case TypeEmbedded:
		for uint32(r.count) != pkg.TotalSize-2 {
			if uint32(r.count) > pkg.TotalSize-2 {
				return nil, fmt.Errorf("%w: consumed %d of %d at offset %d",
					ErrSizeMismatch, r.count, pkg.TotalSize, r.pos)
			}
			path, err := r.lpstring()
			if err != nil {
				return nil, err
			}
			data, err := r.lpdata()
			if err != nil {
				return nil, err
			}
			pkg.Items = append(pkg.Items, File{Path: path, Data: data})
		}
	case TypeLinked:
		m, err := r.u16le()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(m); i++ {
			path, err := r.zstring()
			if err != nil {
				return nil, err
			}
			path = strings.ReplaceAll(path, "~", pkg.Label)
			pkg.Items = append(pkg.Items, File{Path: path})
		}
		if uint32(r.count) != pkg.TotalSize-2 {
			return nil, fmt.Errorf("%w: consumed %d of %d at offset %d",
				ErrSizeMismatch, r.count, pkg.TotalSize, r.pos)
		}
	default:
		return nil, fmt.Errorf("%w: %d at offset %d", ErrBadType, pkg.Type, r.pos)
	}

	fin, err := r.u16le()
	if err != nil {
		return nil, err
	}
	if fin != 0 {
		return nil, fmt.Errorf("%w: %#04x at end of package at offset %d", ErrBadTerminator, fin, r.pos)
	}

	for i := range pkg.Items {
		pkg.Items[i].Name = basename(pkg.Items[i].Path)
	}
	return pkg, nil
}

// basename returns the path component after the last backslash.
func basename(path string) string {
	if i := strings.LastIndexByte(path, '\\'); i >= 0 {
		return path[i+1:]
	}
	return path
}
