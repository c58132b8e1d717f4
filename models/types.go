// Package models contain needed models
package models

// StegoResponse is the JSON envelope for failed embeds and for capacity
// reports. Successful embeds stream the carrier instead.
type StegoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExtractResponse represents the response after extracting a hidden message
type ExtractResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SecretMessage string `json:"secret_message,omitempty"`
	Carrier       string `json:"carrier,omitempty"`
}

// CapacityResponse reports how much a carrier can hold
type CapacityResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Carrier string `json:"carrier"`
	// Units counts colour channels, samples or characters
	Units int `json:"units"`
	// MaxMessageLength is in characters, -1 when not even an empty message fits
	MaxMessageLength int `json:"max_message_length"`
}

// AudioMetadata represents metadata about an audio file
type AudioMetadata struct {
	Format       string // "wav" or "mp3"
	SampleRate   int
	Channels     int
	BitDepth     int
	Duration     float64
	TotalSamples int
	Title        string
	Artist       string
}
