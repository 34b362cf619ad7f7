//go:build sound

package cue

import (
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// speakerOutput mixes streams into the speaker.
type speakerOutput struct {
	mixer *beep.Mixer
}

func (o *speakerOutput) Add(s beep.Streamer) {
	speaker.Lock()
	o.mixer.Add(s)
	speaker.Unlock()
}

func (o *speakerOutput) Clear() {
	speaker.Lock()
	o.mixer.Clear()
	speaker.Unlock()
}

// NewTone opens the audio device. volume is between 0 and 1.
func NewTone(volume float64) (*Tone, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(speakerDelay)); err != nil {
		return nil, err
	}
	mixer := &beep.Mixer{}
	speaker.Play(mixer)
	return newTone(&speakerOutput{mixer: mixer}, volume), nil
}
