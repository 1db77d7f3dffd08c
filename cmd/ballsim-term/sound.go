package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate   = beep.SampleRate(44100)
	clickLength  = 30 * time.Millisecond
	clickSpacing = 60 * time.Millisecond
)

// clicker plays a short tone on bounces, at most once per clickSpacing.
type clicker struct {
	enabled bool
	last    time.Time
}

func newClicker(enabled bool) (*clicker, error) {
	if !enabled {
		return &clicker{}, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &clicker{}, err
	}
	return &clicker{enabled: true}, nil
}

func (c *clicker) click(freq int) {
	if !c.enabled || time.Since(c.last) < clickSpacing {
		return
	}
	tone, err := generators.SineTone(sampleRate, float64(freq))
	if err != nil {
		return
	}
	c.last = time.Now()
	speaker.Play(beep.Take(sampleRate.N(clickLength), tone))
}
