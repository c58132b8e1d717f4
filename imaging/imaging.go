// Package imaging converts image files to and from stego.PixelGrid.
//
// Any format the standard decoders or golang.org/x/image/bmp understand can
// be read. Output is always lossless (PNG or BMP) because lossy compression
// would destroy the embedded bits.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"stegx/stego"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	FormatPNG = "png"
	FormatBMP = "bmp"

	channelsNRGBA = 4
)

// Decode reads an encoded image into an NRGBA pixel grid and returns the
// name of the source format.
func Decode(data []byte) (stego.PixelGrid, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return stego.PixelGrid{}, "", fmt.Errorf("decode image: %w", err)
	}
	return FromImage(src), format, nil
}

// FromImage copies src into a pixel grid with four channels per pixel.
func FromImage(src image.Image) stego.PixelGrid {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != b.Dx()*channelsNRGBA || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}
	pix := make([]uint8, len(nrgba.Pix))
	copy(pix, nrgba.Pix)
	return stego.PixelGrid{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: channelsNRGBA,
		Pix:      pix,
	}
}

// ToImage wraps a grid with 3 or 4 channels per pixel as an image.
func ToImage(grid stego.PixelGrid) (*image.NRGBA, error) {
	if grid.Width <= 0 || grid.Height <= 0 || len(grid.Pix) != grid.Width*grid.Height*grid.Channels {
		return nil, fmt.Errorf("%w: %dx%d grid with %d values", stego.ErrMalformedCarrier, grid.Width, grid.Height, len(grid.Pix))
	}
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	switch grid.Channels {
	case channelsNRGBA:
		copy(img.Pix, grid.Pix)
	case stego.ColorChannels:
		for p := 0; p < grid.Width*grid.Height; p++ {
			copy(img.Pix[p*channelsNRGBA:], grid.Pix[p*3:p*3+3])
			img.Pix[p*channelsNRGBA+3] = 0xFF
		}
	default:
		return nil, fmt.Errorf("%w: unsupported channel count %d", stego.ErrMalformedCarrier, grid.Channels)
	}
	return img, nil
}

// Encode writes grid losslessly in the given format ("png" or "bmp").
func Encode(grid stego.PixelGrid, format string) ([]byte, error) {
	img, err := ToImage(grid)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case FormatPNG, "":
		err = png.Encode(&buf, img)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("unsupported output format %q, use png or bmp", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type for an output format.
func ContentType(format string) string {
	if strings.ToLower(format) == FormatBMP {
		return "image/bmp"
	}
	return "image/png"
}

// Extension returns the file extension, dot included, for an output format.
func Extension(format string) string {
	if strings.ToLower(format) == FormatBMP {
		return ".bmp"
	}
	return ".png"
}
