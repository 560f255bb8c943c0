package fluid

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestStore_Capacity(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 3; i++ {
		if !s.Append(NewParticle(r2.Vec{X: float64(i)}, 1)) {
			t.Fatalf("append %d rejected", i)
		}
	}
	if !s.Full() {
		t.Error("expected store to be full")
	}
	if s.Append(NewParticle(r2.Vec{}, 1)) {
		t.Error("append past capacity accepted")
	}
	if s.Len() != 3 {
		t.Errorf("expected 3 particles, got %d", s.Len())
	}
	if s.At(2).Pos.X != 2 {
		t.Errorf("insertion order not preserved: %v", s.At(2).Pos)
	}

	s.Clear()
	if s.Len() != 0 || s.Cap() != 3 {
		t.Errorf("clear: len=%d cap=%d", s.Len(), s.Cap())
	}
}

func TestParticle_Finite(t *testing.T) {
	tests := []struct {
		name  string
		p     Particle
		valid bool
	}{
		{"at rest", NewParticle(r2.Vec{X: 1, Y: 2}, 1), true},
		{"NaN position", Particle{Pos: r2.Vec{X: math.NaN()}}, false},
		{"Inf velocity", Particle{Vel: r2.Vec{Y: math.Inf(-1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Finite(); got != tt.valid {
				t.Errorf("Finite() = %v, want %v", got, tt.valid)
			}
			if got := Finite([]Particle{NewParticle(r2.Vec{}, 1), tt.p}); got != tt.valid {
				t.Errorf("Finite(slice) = %v, want %v", got, tt.valid)
			}
		})
	}
}
