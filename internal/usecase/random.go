package usecase

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// lockedRandom serializes access to a source that is not goroutine-safe.
type lockedRandom struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func defaultRandom(rng RandomSource) RandomSource {
	if rng == nil {
		return globalRandom{}
	}
	return &lockedRandom{src: rng}
}
