// Package quality measures how much a carrier changed during embedding.
package quality

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// CalculatePSNR returns the peak signal-to-noise ratio in dB between two
// equally long signals whose values span at most peak. Identical signals
// give +Inf; mismatched or empty input gives 0.
func CalculatePSNR(original, stego []float64, peak float64) float64 {
	if len(original) != len(stego) || len(original) == 0 {
		return 0.0
	}

	// MSE = ||original - stego||² / n
	dist := floats.Distance(original, stego, 2)
	mse := dist * dist / float64(len(original))
	if mse == 0 {
		return math.Inf(1)
	}

	// PSNR = 20 * log10(MAX_SIGNAL_VALUE / sqrt(MSE))
	return 20 * math.Log10(peak/math.Sqrt(mse))
}

// PixelPSNR compares two 8-bit channel buffers.
func PixelPSNR(original, stego []uint8) float64 {
	return CalculatePSNR(toFloats(original), toFloats(stego), 255)
}

// SamplePSNR compares two PCM sample sequences of the given bit depth.
func SamplePSNR(original, stego []int, bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	peak := float64(int64(1)<<(bitDepth-1) - 1)
	return CalculatePSNR(toFloats(original), toFloats(stego), peak)
}

func ValidatePSNR(psnr float64, threshold float64) bool {
	if math.IsInf(psnr, 1) {
		return true // Infinite PSNR is always good
	}
	return psnr >= threshold
}

// FormatPSNR renders a PSNR for response headers.
func FormatPSNR(psnr float64) string {
	if math.IsInf(psnr, 1) {
		return "inf"
	}
	return strconv.FormatFloat(psnr, 'f', 2, 64)
}

func toFloats[T ~int | ~uint8](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
