package handlers

import (
	"fmt"

	"stegx/logging"
	"stegx/quality"
	"stegx/stego"

	"github.com/gin-gonic/gin"
)

// EmbedAudio accepts WAV or MP3 and always answers with WAV. MP3 output is
// refused on purpose: lossy re-encoding wipes out the sample LSBs.
func (h *StegoHandler) EmbedAudio(c *gin.Context) {
	data, filename, err := h.readCarrier(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	message, err := readMessage(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	samples, metadata, err := h.audioDecoder.Decode(data, filename)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
		return
	}

	stegoSamples, err := stego.EmbedAudio(samples, message)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := h.audioDecoder.EncodePCMToWAV(stegoSamples, metadata)
	if err != nil {
		h.fail(c, err)
		return
	}

	psnr := quality.SamplePSNR(samples, stegoSamples, metadata.BitDepth)
	log := logging.FromContext(c)
	log.Info("message embedded",
		"carrier", stego.KindAudio.String(),
		"source_format", metadata.Format,
		"samples", metadata.TotalSamples,
		"sample_rate", metadata.SampleRate,
		"channels", metadata.Channels,
		"psnr", psnr)
	if !quality.ValidatePSNR(psnr, h.cfg.Stego.PSNRThreshold) {
		log.Warn("embedding may be perceptible", "psnr", psnr, "threshold", h.cfg.Stego.PSNRThreshold)
	}

	if metadata.Title != "" {
		c.Header("X-Source-Title", headerSafe(metadata.Title))
	}
	if metadata.Artist != "" {
		c.Header("X-Source-Artist", headerSafe(metadata.Artist))
	}
	c.Header("X-Stego-PSNR", quality.FormatPSNR(psnr))
	sendCarrier(c, out,
		stegoFilename(filename, ".wav"),
		"audio/wav",
		"PCM Sample LSB",
		stego.MaxMessageLen(stego.KindAudio, len(samples)))
}

func (h *StegoHandler) ExtractAudio(c *gin.Context) {
	data, filename, err := h.readCarrier(c)
	if err != nil {
		h.failExtract(c, stego.KindAudio, err)
		return
	}

	samples, _, err := h.audioDecoder.Decode(data, filename)
	if err != nil {
		h.failExtract(c, stego.KindAudio, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
		return
	}

	message, err := stego.ExtractAudio(samples, h.decodeOpts...)
	if err != nil {
		h.failExtract(c, stego.KindAudio, err)
		return
	}
	h.extracted(c, stego.KindAudio, message)
}
