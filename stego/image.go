package stego

import "fmt"

// ColorChannels is the number of leading channels per pixel that carry
// payload bits. A fourth (alpha) channel is left untouched.
const ColorChannels = 3

// PixelGrid is a raster in row-major order with Channels 8-bit values per
// pixel, e.g. R, G, B, A.
type PixelGrid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// Capacity returns the number of bits the grid can carry.
func (g PixelGrid) Capacity() int {
	return g.Width * g.Height * ColorChannels
}

func (g PixelGrid) validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: image has no pixels (%dx%d)", ErrMalformedCarrier, g.Width, g.Height)
	}
	if g.Channels < ColorChannels {
		return fmt.Errorf("%w: %d channels per pixel, need at least %d", ErrMalformedCarrier, g.Channels, ColorChannels)
	}
	if want := g.Width * g.Height * g.Channels; len(g.Pix) != want {
		return fmt.Errorf("%w: pixel buffer holds %d values, expected %d", ErrMalformedCarrier, len(g.Pix), want)
	}
	return nil
}

// channelIndex maps the i-th payload bit to its offset in Pix: pixels in
// raster order, then the colour channels of each pixel in index order.
func (g PixelGrid) channelIndex(i int) int {
	return (i/ColorChannels)*g.Channels + i%ColorChannels
}

// EmbedImage returns a copy of img with message hidden in the LSBs of its
// colour channels. img itself is not modified.
func EmbedImage(img PixelGrid, message string) (PixelGrid, error) {
	if err := img.validate(); err != nil {
		return PixelGrid{}, err
	}
	if err := CheckBits(img.Capacity(), message); err != nil {
		return PixelGrid{}, err
	}
	bits, err := ToBits(message)
	if err != nil {
		return PixelGrid{}, err
	}

	out := img
	out.Pix = make([]uint8, len(img.Pix))
	copy(out.Pix, img.Pix)
	embedBits(out.Pix, bits, out.channelIndex)
	return out, nil
}

// ExtractImage recovers a message hidden by EmbedImage. Scanning stops as
// soon as the end of the message is seen.
func ExtractImage(img PixelGrid, opts ...DecodeOption) (string, error) {
	if err := img.validate(); err != nil {
		return "", err
	}
	return extractBits(img.Pix, img.Capacity(), img.channelIndex, opts...), nil
}
