package percentencode

import (
	"net/url"
	"strings"
)

const upperHexDigitsConstant = "0123456789ABCDEF"

// Encode percent-encodes every byte of text except A-Z, a-z, 0-9 and "_.-~".
// Slashes are escaped too, so "feature/login" becomes "feature%2Flogin".
func Encode(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))
	for index := 0; index < len(text); index++ {
		character := text[index]
		if isUnreserved(character) {
			builder.WriteByte(character)
			continue
		}
		builder.WriteByte('%')
		builder.WriteByte(upperHexDigitsConstant[character>>4])
		builder.WriteByte(upperHexDigitsConstant[character&0x0F])
	}
	return builder.String()
}

// Decode reverses Encode.
func Decode(text string) (string, error) {
	return url.PathUnescape(text)
}

func isUnreserved(character byte) bool {
	switch {
	case 'A' <= character && character <= 'Z':
		return true
	case 'a' <= character && character <= 'z':
		return true
	case '0' <= character && character <= '9':
		return true
	}
	switch character {
	case '_', '.', '-', '~':
		return true
	}
	return false
}
