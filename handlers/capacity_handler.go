package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"stegx/imaging"
	"stegx/models"
	"stegx/stego"

	"github.com/gin-gonic/gin"
)

// Capacity reports how many characters a carrier can hide without
// embedding anything.
func (h *StegoHandler) Capacity(c *gin.Context) {
	data, filename, err := h.readCarrier(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	kind, err := stego.ParseKind(c.PostForm(formCarrierType))
	if err != nil {
		h.fail(c, err)
		return
	}

	var units int
	switch kind {
	case stego.KindImage:
		grid, _, err := imaging.Decode(data)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
			return
		}
		units = grid.Capacity()
	case stego.KindAudio:
		samples, _, err := h.audioDecoder.Decode(data, filename)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: %v", stego.ErrMalformedCarrier, err))
			return
		}
		units = len(samples)
	case stego.KindText:
		cover, err := decodeText(data)
		if err != nil {
			h.fail(c, err)
			return
		}
		units = utf8.RuneCountInString(cover)
	}

	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:          true,
		Carrier:          kind.String(),
		Units:            units,
		MaxMessageLength: stego.MaxMessageLen(kind, units),
	})
}
