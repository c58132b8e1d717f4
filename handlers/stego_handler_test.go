package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stegx/audio"
	"stegx/config"
	"stegx/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, mutate ...func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	for _, m := range mutate {
		m(cfg)
	}
	r := gin.New()
	NewStegoHandler(cfg).Register(r)
	return r
}

type upload struct {
	filename string
	data     []byte
	fields   map[string]string
}

func post(t *testing.T, r http.Handler, path string, u upload) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if u.data != nil {
		fw, err := mw.CreateFormFile(formCarrierFile, u.filename)
		require.NoError(t, err)
		_, err = fw.Write(u.data)
		require.NoError(t, err)
	}
	for k, v := range u.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func pngCarrier(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 3), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func wavCarrier(t *testing.T, n int) []byte {
	t.Helper()
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i*7919)%20000 - 10000
	}
	data, err := audio.NewAudioDecoder().EncodePCMToWAV(samples, &models.AudioMetadata{
		SampleRate: 8000, Channels: 1, BitDepth: 16,
	})
	require.NoError(t, err)
	return data
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestImageEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/v1/stego/image/embed", upload{
		filename: "cat.png",
		data:     pngCarrier(t, 20, 20),
		fields:   map[string]string{formMessage: "meet at noon"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cat_stego.png")
	assert.Equal(t, "Image LSB", w.Header().Get("X-Stego-Method"))
	assert.Equal(t, "148", w.Header().Get("X-Stego-Capacity")) // (20*20*3-16)/8
	assert.NotEmpty(t, w.Header().Get("X-Stego-PSNR"))

	w = post(t, r, "/api/v1/stego/image/extract", upload{filename: "cat_stego.png", data: w.Body.Bytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeJSON[models.ExtractResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "meet at noon", resp.SecretMessage)
	assert.Equal(t, "image", resp.Carrier)
}

func TestImageEmbedBMPOutput(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.Stego.ImageFormat = "bmp" })

	w := post(t, r, "/api/v1/stego/image/embed", upload{
		filename: "cat.png",
		data:     pngCarrier(t, 16, 16),
		fields:   map[string]string{formMessage: "bitmap"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/bmp", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("BM")))

	w = post(t, r, "/api/v1/stego/image/extract", upload{filename: "cat_stego.bmp", data: w.Body.Bytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "bitmap", decodeJSON[models.ExtractResponse](t, w).SecretMessage)
}

func TestAudioEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/v1/stego/audio/embed", upload{
		filename: "voice.wav",
		data:     wavCarrier(t, 1000),
		fields:   map[string]string{formMessage: "A"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "voice_stego.wav")
	assert.Equal(t, "123", w.Header().Get("X-Stego-Capacity")) // (1000-16)/8

	w = post(t, r, "/api/v1/stego/audio/extract", upload{filename: "voice_stego.wav", data: w.Body.Bytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "A", decodeJSON[models.ExtractResponse](t, w).SecretMessage)
}

func TestTextEndpoints(t *testing.T) {
	r := newTestRouter(t)
	cover := strings.Repeat("a", 100)

	w := post(t, r, "/api/v1/stego/text/embed", upload{
		filename: "cover.txt",
		data:     []byte(cover),
		fields:   map[string]string{formMessage: "hi"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cover_stego.txt")

	w = post(t, r, "/api/v1/stego/text/extract", upload{filename: "cover_stego.txt", data: w.Body.Bytes()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "hi", decodeJSON[models.ExtractResponse](t, w).SecretMessage)

	t.Run("utf-8 bom is dropped", func(t *testing.T) {
		w := post(t, r, "/api/v1/stego/text/embed", upload{
			filename: "bom.txt",
			data:     append([]byte("\xEF\xBB\xBF"), cover...),
			fields:   map[string]string{formMessage: "bom"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.False(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\xEF\xBB\xBF")))
	})
}

func TestCapacityEndpoint(t *testing.T) {
	r := newTestRouter(t)
	test := []struct {
		name     string
		kind     string
		filename string
		data     []byte
		units    int
		max      int
	}{
		{"image too small for anything", "image", "a.png", pngCarrier(t, 2, 2), 12, -1},
		{"image", "image", "a.png", pngCarrier(t, 4, 4), 48, 4},
		{"audio", "audio", "a.wav", wavCarrier(t, 200), 200, 23},
		{"text", "text", "a.txt", []byte(strings.Repeat("x", 100)), 100, 29},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, "/api/v1/stego/capacity", upload{
				filename: tt.filename,
				data:     tt.data,
				fields:   map[string]string{formCarrierType: tt.kind},
			})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decodeJSON[models.CapacityResponse](t, w)
			assert.Equal(t, tt.kind, resp.Carrier)
			assert.Equal(t, tt.units, resp.Units)
			assert.Equal(t, tt.max, resp.MaxMessageLength)
		})
	}
}

func TestErrors(t *testing.T) {
	r := newTestRouter(t)
	test := []struct {
		name   string
		path   string
		upload upload
		status int
	}{
		{"missing carrier", "/api/v1/stego/image/embed",
			upload{fields: map[string]string{formMessage: "x"}}, http.StatusBadRequest},
		{"empty message", "/api/v1/stego/image/embed",
			upload{filename: "a.png", data: pngCarrier(t, 10, 10)}, http.StatusBadRequest},
		{"image too small", "/api/v1/stego/image/embed",
			upload{filename: "a.png", data: pngCarrier(t, 2, 2), fields: map[string]string{formMessage: "x"}}, http.StatusUnprocessableEntity},
		{"unsupported character", "/api/v1/stego/audio/embed",
			upload{filename: "a.wav", data: wavCarrier(t, 500), fields: map[string]string{formMessage: "€"}}, http.StatusBadRequest},
		{"not an image", "/api/v1/stego/image/extract",
			upload{filename: "a.png", data: []byte("garbage")}, http.StatusBadRequest},
		{"not audio", "/api/v1/stego/audio/extract",
			upload{filename: "a.ogg", data: []byte("garbage")}, http.StatusBadRequest},
		{"cover too short", "/api/v1/stego/text/embed",
			upload{filename: "a.txt", data: []byte("short"), fields: map[string]string{formMessage: "hello"}}, http.StatusUnprocessableEntity},
		{"nothing hidden in text", "/api/v1/stego/text/extract",
			upload{filename: "a.txt", data: []byte("plain old text")}, http.StatusNotFound},
		{"cover not utf-8", "/api/v1/stego/text/embed",
			upload{filename: "latin1.txt", data: []byte("caf\xe9 " + strings.Repeat("na\xefve ", 20)), fields: map[string]string{formMessage: "hi"}}, http.StatusBadRequest},
		{"stego text not utf-8", "/api/v1/stego/text/extract",
			upload{filename: "latin1.txt", data: []byte("caf\xe9 \xff\xfe plain")}, http.StatusBadRequest},
		{"delimiter pair in message", "/api/v1/stego/image/embed",
			upload{filename: "a.png", data: pngCarrier(t, 10, 10), fields: map[string]string{formMessage: "key\u00ff\u00fevalue"}}, http.StatusBadRequest},
		{"unknown carrier type", "/api/v1/stego/capacity",
			upload{filename: "a.txt", data: []byte("text"), fields: map[string]string{formCarrierType: "video"}}, http.StatusBadRequest},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, tt.path, tt.upload)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
			assert.NotEmpty(t, resp["message"])
		})
	}
}

func TestUploadSizeLimit(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.Server.MaxUploadMB = 1 })

	w := post(t, r, "/api/v1/stego/audio/extract", upload{
		filename: "big.wav",
		data:     bytes.Repeat([]byte{0}, 1<<20+1),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	assert.Equal(t, false, decodeJSON[map[string]any](t, w)["success"])
}

func TestDownloadFilenameIsQuoted(t *testing.T) {
	r := newTestRouter(t)

	w := post(t, r, "/api/v1/stego/text/embed", upload{
		filename: "a b;c.txt",
		data:     []byte(strings.Repeat("a", 100)),
		fields:   map[string]string{formMessage: "hi"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "a b;c_stego.txt", params["filename"])
}
