package intent

import "unicode/utf16"

// stringHash is the 31-multiplier polynomial hash over UTF-16 code units.
// Filter hashes are built from it so they stay stable across processes.
func stringHash(s string) uint32 {
	var h uint32
	for _, r := range s {
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			h = 31*h + uint32(r1)
			h = 31*h + uint32(r2)
			continue
		}
		h = 31*h + uint32(r)
	}
	return h
}
