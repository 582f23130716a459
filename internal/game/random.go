package game

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
)

// Rand is the source behind every roll the simulation makes.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & (1<<63 - 1)), nil
}

func NewSeededRand(seed int64) *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(seed))
}

func chance(r Rand, p float64) bool {
	return r.Float64() < p
}

func pick[T any](r Rand, items []T) T {
	return items[r.Intn(len(items))]
}
