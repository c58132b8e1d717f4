package stego

import "fmt"

// EmbedAudio returns a copy of samples with message hidden in the LSB of
// the leading samples. Bits above the LSB, sign included, are preserved.
func EmbedAudio(samples []int, message string) ([]int, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: audio has no samples", ErrMalformedCarrier)
	}
	if err := CheckBits(len(samples), message); err != nil {
		return nil, err
	}
	bits, err := ToBits(message)
	if err != nil {
		return nil, err
	}

	stego := make([]int, len(samples))
	copy(stego, samples)
	embedBits(stego, bits, identity)
	return stego, nil
}

// ExtractAudio recovers a message hidden by EmbedAudio.
func ExtractAudio(samples []int, opts ...DecodeOption) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("%w: audio has no samples", ErrMalformedCarrier)
	}
	return extractBits(samples, len(samples), identity, opts...), nil
}
