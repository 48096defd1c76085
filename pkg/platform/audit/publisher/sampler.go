package publisher

import (
	"math/rand/v2"
	"sync"
)

// Sampler keeps a fraction of high-volume operations events. Rates are in
// [0, 1]; 1 keeps everything.
type Sampler struct {
	mu          sync.RWMutex
	defaultRate float64
	byAction    map[string]float64
	draw        func() float64
}

func NewSampler(defaultRate float64) *Sampler {
	return &Sampler{
		defaultRate: clampRate(defaultRate),
		byAction:    make(map[string]float64),
		draw:        rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
}

// ShouldSample reports whether an event for action should be kept.
func (s *Sampler) ShouldSample(action string) bool {
	s.mu.RLock()
	rate, ok := s.byAction[action]
	if !ok {
		rate = s.defaultRate
	}
	s.mu.RUnlock()

	switch rate {
	case 0:
		return false
	case 1:
		return true
	}
	return s.draw() < rate
}

// SetRate overrides the rate for one action.
func (s *Sampler) SetRate(action string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAction[action] = clampRate(rate)
}

func clampRate(rate float64) float64 {
	return min(max(rate, 0), 1)
}
