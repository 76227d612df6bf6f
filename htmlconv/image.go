package htmlconv

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// imageSize reads the pixel dimensions of an embedded picture. Formats the
// registered decoders cannot handle (metafiles, headerless DIBs) report
// ok false and the caller falls back to the declared goal size.
func imageSize(data []byte) (w, h int, ok bool) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

// sniffImageType guesses a file extension from the payload magic.
func sniffImageType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(data, []byte("\xff\xd8")):
		return "jpg"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("\xd7\xcd\xc6\x9a")):
		return "wmf"
	}
	return "bin"
}
