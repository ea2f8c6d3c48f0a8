package math32

import (
	"math"
	"math/rand"
	"testing"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"empty", nil, nil, 0},
		{"single", []float32{2}, []float32{3}, 6},
		{"orthogonal", []float32{1, 0, 0, 0}, []float32{0, 1, 0, 0}, 0},
		{"identity", []float32{1, 2, 3, 4, 5}, []float32{1, 2, 3, 4, 5}, 55},
		{"tail", []float32{1, 1, 1, 1, 1, 1, 1}, []float32{2, 2, 2, 2, 2, 2, 2}, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dot(tt.a, tt.b); got != tt.want {
				t.Errorf("Dot = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDotMatchesGeneric(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 3, 8, 127, 1536} {
		a := make([]float32, n)
		b := make([]float32, n)
		for i := range a {
			a[i] = rng.Float32()*2 - 1
			b[i] = rng.Float32()*2 - 1
		}

		got := Dot(a, b)
		want := dotGeneric(a, b)
		if diff := math.Abs(float64(got - want)); diff > 1e-3 {
			t.Errorf("n=%d: Dot = %v, generic = %v (diff %v)", n, got, want, diff)
		}
	}
}

func TestNorm(t *testing.T) {
	if got := Norm([]float32{3, 4}); got != 5 {
		t.Errorf("Norm = %v, want 5", got)
	}
	if got := SquaredNorm([]float32{1, 2, 2}); got != 9 {
		t.Errorf("SquaredNorm = %v, want 9", got)
	}
}

func TestScaleInPlace(t *testing.T) {
	a := []float32{1, 2, 3}
	ScaleInPlace(a, 0.5)
	want := []float32{0.5, 1, 1.5}
	for i := range a {
		if a[i] != want[i] {
			t.Errorf("a[%d] = %v, want %v", i, a[i], want[i])
		}
	}
}

func BenchmarkDot1536(b *testing.B) {
	x := make([]float32, 1536)
	y := make([]float32, 1536)
	for i := range x {
		x[i] = float32(i)
		y[i] = float32(i) * 0.5
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Dot(x, y)
	}
}
