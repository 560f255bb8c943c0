package export

import (
	"strings"
	"testing"

	"github.com/san-kum/fluidsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestParticlesToSVG(t *testing.T) {
	ps := []r2.Vec{{X: 1, Y: 1}, {X: 19, Y: 14}}
	svg := ParticlesToSVG(ps, 20, 14.0625, 0.03, 1024)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 circles, got %d", n)
	}
	// y is flipped: (1, 1) sits near the bottom of a 720 px tall image
	if !strings.Contains(svg, `height="720"`) || !strings.Contains(svg, `cx="51.2" cy="668.8"`) {
		t.Errorf("unexpected geometry:\n%s", svg)
	}

	if ParticlesToSVG(ps, 0, 1, 0.03, 100) != "" {
		t.Error("expected empty output for a degenerate domain")
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 4)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="14.0" cy="14.0"`) {
		t.Errorf("dot (3,3) misplaced:\n%s", svg)
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("a single value has no line")
	}
	svg := SeriesToSVG([]float64{40, 45, 50}, 100, 50, "#00ff88")
	if !strings.Contains(svg, `stroke="#00ff88"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path:\n%s", svg)
	}
}
