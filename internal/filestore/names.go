package filestore

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// keepByte reports whether b is written to a file name unescaped. Upper-case
// letters are escaped so names stay distinct on case-insensitive file systems.
func keepByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_'
}

// EncodeName maps an identifier to a file name component. Every byte outside
// [a-z0-9_-] becomes %XX, which makes the mapping total and injective and
// keeps ".", ".." and path separators out of names.
func EncodeName(id string) string {
	var sb strings.Builder
	sb.Grow(len(id))
	for i := 0; i < len(id); i++ {
		b := id[i]
		if keepByte(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}

// DecodeName reverses EncodeName. It rejects names EncodeName cannot produce.
func DecodeName(name string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if keepByte(b) {
			sb.WriteByte(b)
			continue
		}
		if b != '%' || i+2 >= len(name) {
			return "", fmt.Errorf("invalid encoded name %q", name)
		}
		hi, lo := unhex(name[i+1]), unhex(name[i+2])
		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("invalid encoded name %q", name)
		}
		decoded := byte(hi<<4 | lo)
		if keepByte(decoded) {
			return "", fmt.Errorf("invalid encoded name %q", name)
		}
		sb.WriteByte(decoded)
		i += 2
	}
	return sb.String(), nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
