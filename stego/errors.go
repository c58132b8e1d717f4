// Package stego hides text messages in images, PCM audio and plain text.
//
// Image and audio carriers use least-significant-bit substitution driven
// by a delimited bit sequence (see ToBits). Text carriers interleave the
// message characters into the cover text behind zero-width markers.
package stego

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrCapacityExceeded     = errors.New("message exceeds carrier capacity")
	ErrUnsupportedCharacter = errors.New("unsupported character")
	ErrMalformedCarrier     = errors.New("malformed carrier")
)
