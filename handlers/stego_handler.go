// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"stegx/audio"
	"stegx/config"
	"stegx/logging"
	"stegx/models"
	"stegx/stego"

	"github.com/gin-gonic/gin"
)

const (
	formCarrierFile = "carrier_file"
	formMessage     = "message"
	formCarrierType = "carrier_type"

	msgNothingFound = "No hidden message was detected in this file."
)

type StegoHandler struct {
	cfg          *config.Config
	audioDecoder *audio.AudioDecoder
	decodeOpts   []stego.DecodeOption
}

func NewStegoHandler(cfg *config.Config) *StegoHandler {
	h := &StegoHandler{
		cfg:          cfg,
		audioDecoder: audio.NewAudioDecoder(),
	}
	if cfg.Stego.LegacyStop {
		h.decodeOpts = append(h.decodeOpts, stego.WithLegacyStop())
	}
	return h
}

// Register mounts the API routes on r.
func (h *StegoHandler) Register(r gin.IRouter) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)

		st := api.Group("/stego")
		{
			st.POST("/image/embed", h.EmbedImage)
			st.POST("/image/extract", h.ExtractImage)
			st.POST("/audio/embed", h.EmbedAudio)
			st.POST("/audio/extract", h.ExtractAudio)
			st.POST("/text/embed", h.EmbedText)
			st.POST("/text/extract", h.ExtractText)
			st.POST("/capacity", h.Capacity)
		}
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

// readCarrier parses the multipart form and returns the uploaded carrier.
func (h *StegoHandler) readCarrier(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes())
	if err := c.Request.ParseMultipartForm(h.cfg.MaxUploadBytes()); err != nil {
		return nil, "", fmt.Errorf("%w: failed to parse form: %w", stego.ErrInvalidInput, err)
	}

	file, header, err := c.Request.FormFile(formCarrierFile)
	if err != nil {
		return nil, "", fmt.Errorf("%w: carrier file is required", stego.ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read carrier file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: carrier file is empty", stego.ErrInvalidInput)
	}
	return data, header.Filename, nil
}

// readMessage returns the message to embed. An empty message is refused
// here even though the codec could carry it.
func readMessage(c *gin.Context) (string, error) {
	message := c.PostForm(formMessage)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", stego.ErrInvalidInput)
	}
	return message, nil
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, stego.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, stego.ErrInvalidInput),
		errors.Is(err, stego.ErrUnsupportedCharacter),
		errors.Is(err, stego.ErrMalformedCarrier):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *StegoHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), models.StegoResponse{
		Success: false,
		Message: err.Error(),
	})
}

func (h *StegoHandler) failExtract(c *gin.Context, kind stego.Kind, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), models.ExtractResponse{
		Success: false,
		Message: err.Error(),
		Carrier: kind.String(),
	})
}

func (h *StegoHandler) extracted(c *gin.Context, kind stego.Kind, message string) {
	if message == "" {
		c.JSON(http.StatusNotFound, models.ExtractResponse{
			Success: false,
			Message: msgNothingFound,
			Carrier: kind.String(),
		})
		return
	}
	logging.FromContext(c).Info("message extracted",
		"carrier", kind.String(),
		"message_length", len([]rune(message)))
	c.JSON(http.StatusOK, models.ExtractResponse{
		Success:       true,
		Message:       "Message extracted successfully",
		SecretMessage: message,
		Carrier:       kind.String(),
	})
}

// sendCarrier streams an encoded carrier back as a download.
func sendCarrier(c *gin.Context, data []byte, filename, contentType, method string, capacity int) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.Itoa(len(data)))

	// Include metadata about the steganography operation
	c.Header("X-Stego-Method", method)
	c.Header("X-Stego-Message", "Secret message successfully embedded")
	c.Header("X-Stego-Capacity", strconv.Itoa(capacity))

	c.Data(http.StatusOK, contentType, data)
}

func stegoFilename(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." {
		base = "carrier"
	}
	return fmt.Sprintf("%s_stego%s", base, ext)
}

func headerSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}
