//go:build !sound

package cue

// NewTone reports ErrNoAudio. The speaker driver links the system audio
// library through cgo, so it is only compiled with the sound tag.
func NewTone(float64) (*Tone, error) {
	return nil, ErrNoAudio
}
