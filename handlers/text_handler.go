package handlers

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"stegx/logging"
	"stegx/stego"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func (h *StegoHandler) EmbedText(c *gin.Context) {
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

	cover, err := decodeText(data)
	if err != nil {
		h.fail(c, err)
		return
	}
	if strings.ContainsRune(cover, stego.Marker) {
		logging.FromContext(c).Warn("cover text already contains zero-width markers, extraction will be unreliable")
	}

	encoded, err := stego.EmbedText(cover, message)
	if err != nil {
		h.fail(c, err)
		return
	}

	logging.FromContext(c).Info("message embedded",
		"carrier", stego.KindText.String(),
		"cover_length", utf8.RuneCountInString(cover),
		"message_length", utf8.RuneCountInString(message))

	sendCarrier(c, []byte(encoded),
		stegoFilename(filename, ".txt"),
		"text/plain; charset=utf-8",
		"Zero-Width Interleave",
		stego.MaxMessageLen(stego.KindText, utf8.RuneCountInString(cover)))
}

func (h *StegoHandler) ExtractText(c *gin.Context) {
	data, _, err := h.readCarrier(c)
	if err != nil {
		h.failExtract(c, stego.KindText, err)
		return
	}

	encoded, err := decodeText(data)
	if err != nil {
		h.failExtract(c, stego.KindText, err)
		return
	}
	h.extracted(c, stego.KindText, stego.ExtractText(encoded))
}

// decodeText reads a text upload as UTF-8, honouring a UTF-8 or UTF-16 BOM.
// Input without a UTF-16 BOM must be valid UTF-8; the decoder would
// otherwise replace bad bytes with U+FFFD and the cover would change.
func decodeText(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("%w: cannot decode text file: %v", stego.ErrMalformedCarrier, err)
	}
	if !hasUTF16BOM(data) && !utf8.Valid(bytes.TrimPrefix(data, utf8BOM)) {
		return "", fmt.Errorf("%w: text file is not valid UTF-8", stego.ErrMalformedCarrier)
	}
	return string(decoded), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}
