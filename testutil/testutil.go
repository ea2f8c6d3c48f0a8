// Package testutil provides deterministic random data for tests and the
// developer CLI.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniform fills dst with random values in [-1, 1).
// Locks only once per call (preferred over per-element calls).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()*2 - 1
	}
}

// RandomVector returns a fresh random vector of the given dimension.
func (r *RNG) RandomVector(dim int) []float32 {
	v := make([]float32, dim)
	r.FillUniform(v)
	return v
}

// RandomUnitVector returns a random vector scaled to unit L2 norm.
func (r *RNG) RandomUnitVector(dim int) []float32 {
	v := r.RandomVector(dim)
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		v[0] = 1
		return v
	}
	inv := float32(1 / math.Sqrt(sq))
	for i := range v {
		v[i] *= inv
	}
	return v
}

// DocumentJSON renders one ingest document with the given id and embedding.
func DocumentJSON(id string, emb []float32) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"text":"text for %s","metadata":{"embedding":[%s]}}`,
		id, id, joinFloats(emb)))
}

// DocumentArrayJSON renders a top-level array of n documents with ids
// "prefix-0" .. "prefix-n-1" and random embeddings of the given dimension.
func (r *RNG) DocumentArrayJSON(prefix string, n, dim int) []byte {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(DocumentJSON(fmt.Sprintf("%s-%d", prefix, i), r.RandomVector(dim)))
	}
	b.WriteByte(']')
	return []byte(b.String())
}

func joinFloats(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return strings.Join(parts, ",")
}
