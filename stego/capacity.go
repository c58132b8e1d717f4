package stego

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind names a carrier type.
type Kind int

const (
	KindImage Kind = iota + 1
	KindAudio
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps "image", "audio" or "text" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image":
		return KindImage, nil
	case "audio":
		return KindAudio, nil
	case "text":
		return KindText, nil
	}
	return 0, fmt.Errorf("%w: unknown carrier type %q", ErrInvalidInput, s)
}

// RequiredBits returns the number of carrier units needed to embed message
// in an image or audio carrier, delimiter included.
func RequiredBits(message string) (int, error) {
	n, err := countCodeUnits(message)
	if err != nil {
		return 0, err
	}
	return n*bitsPerChar + delimiterBits, nil
}

// countCodeUnits counts the bytes message encodes to. Code points above 255
// are rejected, and so is "\u00ff\u00fe": that pair spells the Delimiter and
// extraction would stop there.
func countCodeUnits(message string) (int, error) {
	n := 0
	prev := rune(-1)
	for i, r := range message {
		if r > 0xFF {
			return 0, fmt.Errorf("%w: %q at byte offset %d is outside 0-255", ErrUnsupportedCharacter, r, i)
		}
		if prev == rune(stopByte) && r == rune(delimiterTail) {
			return 0, fmt.Errorf("%w: \"\\u00ff\\u00fe\" at byte offset %d collides with the delimiter", ErrUnsupportedCharacter, i)
		}
		prev = r
		n++
	}
	return n, nil
}

// CheckBits verifies that message fits into capacity one-bit units.
func CheckBits(capacity int, message string) error {
	required, err := RequiredBits(message)
	if err != nil {
		return err
	}
	if required > capacity {
		return fmt.Errorf("%w: required %d bits, available %d bits", ErrCapacityExceeded, required, capacity)
	}
	return nil
}

// CheckText verifies that message fits into cover and returns the stride
// EmbedText will interleave at. Lengths are counted in code points.
func CheckText(cover, message string) (int, error) {
	coverLen := utf8.RuneCountInString(cover)
	fullLen := utf8.RuneCountInString(message) + utf8.RuneCountInString(Terminator)
	if coverLen < fullLen*2 {
		return 0, fmt.Errorf("%w: cover text too short, need at least %d characters, have %d",
			ErrCapacityExceeded, fullLen*2, coverLen)
	}
	stride := textStride(coverLen, fullLen)
	if slots := textSlots(coverLen, stride); slots < fullLen {
		return 0, fmt.Errorf("%w: cover text of %d characters offers %d insertion points, need %d",
			ErrCapacityExceeded, coverLen, slots, fullLen)
	}
	return stride, nil
}

// MaxMessageLen returns the longest message, in characters, that a carrier
// of the given kind and size can hold. units counts colour channels for
// images, samples for audio and code points for text. It returns -1 when the
// carrier is too small for even the empty message.
func MaxMessageLen(kind Kind, units int) int {
	switch kind {
	case KindImage, KindAudio:
		if units < delimiterBits {
			return -1
		}
		return (units - delimiterBits) / bitsPerChar
	case KindText:
		terminatorLen := utf8.RuneCountInString(Terminator)
		for fullLen := units / 2; fullLen >= terminatorLen; fullLen-- {
			if textSlots(units, textStride(units, fullLen)) >= fullLen {
				return fullLen - terminatorLen
			}
		}
	}
	return -1
}

func textStride(coverLen, fullLen int) int {
	return max(minTextStride, coverLen/(fullLen*2))
}

// textSlots counts the cover indices i < coverLen with i%stride == 0.
func textSlots(coverLen, stride int) int {
	return (coverLen + stride - 1) / stride
}
