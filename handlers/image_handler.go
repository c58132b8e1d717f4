package handlers

import (
	"fmt"

	"stegx/imaging"
	"stegx/logging"
	"stegx/quality"
	"stegx/stego"

	"github.com/gin-gonic/gin"
)

func (h *StegoHandler) EmbedImage(c *gin.Context) {
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

	grid, sourceFormat, err := imaging.Decode(data)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
		return
	}

	stegoGrid, err := stego.EmbedImage(grid, message)
	if err != nil {
		h.fail(c, err)
		return
	}

	outFormat := h.cfg.Stego.ImageFormat
	out, err := imaging.Encode(stegoGrid, outFormat)
	if err != nil {
		h.fail(c, err)
		return
	}

	psnr := quality.PixelPSNR(grid.Pix, stegoGrid.Pix)
	log := logging.FromContext(c)
	log.Info("message embedded",
		"carrier", stego.KindImage.String(),
		"source_format", sourceFormat,
		"width", grid.Width,
		"height", grid.Height,
		"psnr", psnr)
	if !quality.ValidatePSNR(psnr, h.cfg.Stego.PSNRThreshold) {
		log.Warn("embedding may be perceptible", "psnr", psnr, "threshold", h.cfg.Stego.PSNRThreshold)
	}

	c.Header("X-Stego-PSNR", quality.FormatPSNR(psnr))
	sendCarrier(c, out,
		stegoFilename(filename, imaging.Extension(outFormat)),
		imaging.ContentType(outFormat),
		"Image LSB",
		stego.MaxMessageLen(stego.KindImage, grid.Capacity()))
}

func (h *StegoHandler) ExtractImage(c *gin.Context) {
	data, _, err := h.readCarrier(c)
	if err != nil {
		h.failExtract(c, stego.KindImage, err)
		return
	}

	grid, _, err := imaging.Decode(data)
	if err != nil {
		h.failExtract(c, stego.KindImage, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
		return
	}

	message, err := stego.ExtractImage(grid, h.decodeOpts...)
	if err != nil {
		h.failExtract(c, stego.KindImage, err)
		return
	}
	h.extracted(c, stego.KindImage, message)
}
