// Package cryptorand is a math/rand.Source backed by crypto/rand, for boards
// and IDs that players shouldn't be able to predict.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// New returns a *rand.Rand that draws from crypto/rand.
func New() *mrand.Rand {
	return mrand.New(NewSource())
}

func NewSource() Source {
	return Source{}
}

type Source struct{}

var _ mrand.Source64 = Source{}

func (s Source) Int63() int64 {
	return int64(s.Uint64() &^ (1 << 63))
}

func (Source) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Seed is a no-op, the source can't be seeded.
func (Source) Seed(int64) {}
