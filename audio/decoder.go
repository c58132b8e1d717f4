// Package audio converts audio containers to and from raw PCM samples.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"

	"stegx/models"

	"github.com/aler9/writerseeker"
	"github.com/bogem/id3v2"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tosone/minimp3"
)

const (
	FormatWAV = "wav"
	FormatMP3 = "mp3"

	wavFormatPCM = 1
	mp3BitDepth  = 16
)

type AudioDecoder struct{}

func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{}
}

// DetectFormat reports whether data is a WAV or MP3 file, looking at the
// magic bytes first and the file name second.
func DetectFormat(data []byte, filename string) (string, error) {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	}
	return "", fmt.Errorf("unsupported audio format: %s", filename)
}

// Decode returns the interleaved PCM samples of a WAV or MP3 file.
func (ad *AudioDecoder) Decode(data []byte, filename string) ([]int, *models.AudioMetadata, error) {
	format, err := DetectFormat(data, filename)
	if err != nil {
		return nil, nil, err
	}
	if format == FormatMP3 {
		return ad.DecodeMP3(data)
	}
	return ad.DecodeWAV(data)
}

func (ad *AudioDecoder) DecodeWAV(wavData []byte) ([]int, *models.AudioMetadata, error) {
	decoder := wav.NewDecoder(bytes.NewReader(wavData))
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("failed to decode WAV: not a valid WAV file")
	}
	if decoder.WavAudioFormat != wavFormatPCM {
		return nil, nil, fmt.Errorf("unsupported WAV encoding %d, only integer PCM is supported", decoder.WavAudioFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode WAV: %w", err)
	}

	metadata := &models.AudioMetadata{
		Format:       FormatWAV,
		SampleRate:   int(decoder.SampleRate),
		Channels:     int(decoder.NumChans),
		BitDepth:     int(decoder.BitDepth),
		TotalSamples: len(buf.Data),
	}
	if metadata.Channels > 0 && metadata.SampleRate > 0 {
		metadata.Duration = float64(len(buf.Data)/metadata.Channels) / float64(metadata.SampleRate)
	}
	return buf.Data, metadata, nil
}

// DecodeMP3 decodes an MP3 file into 16-bit samples. The result can only be
// written back as WAV: re-encoding to MP3 would destroy the hidden bits.
func (ad *AudioDecoder) DecodeMP3(mp3Data []byte) ([]int, *models.AudioMetadata, error) {
	decoder, data, err := minimp3.DecodeFull(mp3Data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode MP3: %v", err)
	}
	defer decoder.Close()

	if decoder.Channels == 0 || len(data) < 2 {
		return nil, nil, fmt.Errorf("failed to decode MP3: no audio frames")
	}

	sampleCount := len(data) / 2 // 2 bytes per 16-bit sample
	samples := make([]int, sampleCount)
	for i := range sampleCount {
		// Little-endian 16-bit sample
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:])))
	}

	metadata := &models.AudioMetadata{
		Format:       FormatMP3,
		SampleRate:   decoder.SampleRate,
		Channels:     decoder.Channels,
		BitDepth:     mp3BitDepth,
		Duration:     float64(sampleCount/decoder.Channels) / float64(decoder.SampleRate),
		TotalSamples: sampleCount,
	}
	metadata.Title, metadata.Artist = ReadMP3Tags(mp3Data)
	return samples, metadata, nil
}

// ReadMP3Tags returns the ID3v2 title and artist, or empty strings when the
// file carries no readable tag.
func ReadMP3Tags(mp3Data []byte) (title, artist string) {
	tag, err := id3v2.ParseReader(bytes.NewReader(mp3Data), id3v2.Options{Parse: true})
	if err != nil || tag == nil {
		return "", ""
	}
	return tag.Title(), tag.Artist()
}

// EncodePCMToWAV writes samples into an uncompressed PCM WAV file.
func (ad *AudioDecoder) EncodePCMToWAV(samples []int, metadata *models.AudioMetadata) ([]byte, error) {
	if metadata == nil || metadata.Channels <= 0 || metadata.SampleRate <= 0 || metadata.BitDepth <= 0 {
		return nil, fmt.Errorf("incomplete audio metadata")
	}
	if len(samples)%metadata.Channels != 0 {
		return nil, fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), metadata.Channels)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: metadata.Channels,
			SampleRate:  metadata.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: metadata.BitDepth,
	}

	ws := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(ws, metadata.SampleRate, metadata.BitDepth, metadata.Channels, wavFormatPCM)

	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV: %v", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close WAV encoder: %v", err)
	}

	return ws.Bytes(), nil
}
