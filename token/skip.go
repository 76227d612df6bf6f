package token

// SkipBlock tokenizes forward from off, tracking brace depth relative to
// depth, and returns the offset just past the group close that returns the
// depth to its initial level. Non-brace tokens consume their length without
// altering the depth. Callers positioned just past an opening brace pass
// depth 0 to discard the remainder of that group.
func SkipBlock(src string, off, depth int) int {
	for off < len(src) {
		t := Next(src, off)
		if t.Length == 0 {
			return off
		}
		off += int(t.Length)
		switch t.Kind {
		case GroupOpen:
			depth++
		case GroupClose:
			if depth == 0 {
				return off
			}
			depth--
		}
	}
	return off
}
