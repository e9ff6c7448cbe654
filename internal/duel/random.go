package duel

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source gera floats uniformes em [0, 1). *rand.Rand atende, mas não é seguro
// para uso concorrente; NewSource o envolve com um mutex.
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource retorna uma fonte segura para goroutines com seed determinística.
func NewSource(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewSeed lê uma seed de crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
