package stego

import (
	"strings"
	"unicode/utf8"
)

const (
	// Terminator ends a message hidden in text.
	Terminator = "§EOF§"
	// Marker precedes every hidden character. Cover text must not contain it.
	Marker = '\u200b'

	minTextStride = 3
)

// EmbedText interleaves message into cover. Each hidden character follows
// a Marker and is inserted after cover character i whenever i is a multiple
// of the stride chosen by CheckText.
func EmbedText(cover, message string) (string, error) {
	stride, err := CheckText(cover, message)
	if err != nil {
		return "", err
	}
	full := []rune(message + Terminator)

	var sb strings.Builder
	sb.Grow(len(cover) + len(full)*(utf8.RuneLen(Marker)+utf8.UTFMax))
	next := 0
	i := 0
	for _, c := range cover {
		sb.WriteRune(c)
		if next < len(full) && i%stride == 0 {
			sb.WriteRune(Marker)
			sb.WriteRune(full[next])
			next++
		}
		i++
	}
	return sb.String(), nil
}

// ExtractText collects every character that follows a Marker and returns
// them up to the first Terminator. Without a Terminator everything
// collected is returned.
func ExtractText(encoded string) string {
	text := []rune(encoded)
	var hidden strings.Builder
	for i := 0; i < len(text); {
		if text[i] == Marker && i+1 < len(text) {
			hidden.WriteRune(text[i+1])
			i += 2
			continue
		}
		i++
	}
	msg, _, _ := strings.Cut(hidden.String(), Terminator)
	return msg
}
