// Package hash folds large probe outputs (canvas data URLs, WebGL pixel
// buffers) into compact comparable integers. It is not a cryptographic hash.
package hash

import "unicode/utf16"

// String folds s with h = h*31 + c over its UTF-16 code units, wrapping at
// 32 bits. The result depends only on character codes, so it matches what a
// page computes with charCodeAt for the same text.
func String(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			h = step(h, hi)
			h = step(h, lo)
			continue
		}
		h = step(h, r)
	}
	return h
}

// Bytes applies the same fold to raw bytes.
func Bytes(b []byte) int32 {
	var h int32
	for _, c := range b {
		h = step(h, rune(c))
	}
	return h
}

func step(h int32, c rune) int32 {
	return (h << 5) - h + int32(c)
}
