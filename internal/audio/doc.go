// Package audio plays notification sounds.
// It uses the beep library to play WAV, OGG and MP3 files
// with volume control and per-urgency sound configuration.
package audio
