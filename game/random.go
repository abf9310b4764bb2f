package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Random is the randomness source behind outcome rolls and event picks.
type Random interface {
	// IntRange returns a uniform integer in [min, max].
	IntRange(min, max int) int
	// Weighted returns index i with probability weights[i] / sum(weights).
	Weighted(weights []int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a goroutine-safe PCG source with the given seed.
func NewRandom(seed uint64) Random {
	return &lockedRandom{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewSeededRandom seeds a source from crypto/rand.
func NewSeededRandom() Random {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("read random seed: " + err.Error())
	}
	return NewRandom(binary.LittleEndian.Uint64(b[:]))
}

func (r *lockedRandom) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return min + r.rnd.IntN(max-min+1)
}

func (r *lockedRandom) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}

	r.mu.Lock()
	n := r.rnd.IntN(total)
	r.mu.Unlock()

	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if n < w {
			return i
		}
		n -= w
	}
	return len(weights) - 1
}
