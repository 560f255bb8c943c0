package viz

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	c.Set(3, 7)
	c.Set(-1, 2)  // clipped
	c.Set(8, 0)   // clipped
	c.Set(0, 100) // clipped

	if !c.IsSet(0, 0) || !c.IsSet(3, 7) || c.IsSet(1, 0) {
		t.Error("unexpected dot state")
	}
	if c.Dots() != 2 {
		t.Errorf("expected 2 dots, got %d", c.Dots())
	}
	if c.Grid[0][0] != brailleBase+0x1 || c.Grid[1][1] != brailleBase+0x80 {
		t.Errorf("unexpected braille runes %U %U", c.Grid[0][0], c.Grid[1][1])
	}

	c.Clear()
	if c.Dots() != 0 {
		t.Errorf("expected empty canvas after clear, got %d dots", c.Dots())
	}
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(10, 5) // 20 x 20 dots

	tests := []struct {
		pos  r2.Vec
		x, y int
	}{
		{r2.Vec{X: 0.1, Y: 9.9}, 0, 0},
		{r2.Vec{X: 5.2, Y: 5.2}, 10, 9},
		{r2.Vec{X: 9.9, Y: 0.1}, 19, 19},
	}
	for _, tt := range tests {
		c.Clear()
		c.Plot(tt.pos, 10, 10)
		if !c.IsSet(tt.x, tt.y) || c.Dots() != 1 {
			t.Errorf("Plot(%v) did not light (%d, %d)", tt.pos, tt.x, tt.y)
		}
	}

	c.DrawParticles([]r2.Vec{{X: -1, Y: 5}, {X: 11, Y: 5}, {X: 5, Y: 11}}, 10, 10)
	if c.Dots() != 0 {
		t.Errorf("positions outside the domain should be clipped, got %d dots", c.Dots())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(5, 1)
	c.DrawLine(0, 1, 9, 1)
	if c.Dots() != 10 {
		t.Errorf("expected 10 dots, got %d", c.Dots())
	}

	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 1 || len([]rune(lines[0])) != 5 {
		t.Errorf("unexpected string form %q", c.String())
	}
}

func TestRecorder(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(1, 1)

	img := CanvasImage(c)
	if b := img.Bounds(); b.Dx() != 8*dotW || b.Dy() != 8*dotH {
		t.Fatalf("unexpected image size %v", b)
	}
	if img.ColorIndexAt(1*dotW, 1*dotH) != 1 || img.ColorIndexAt(0, 0) != 0 {
		t.Error("dot not rendered")
	}

	r := NewRecorder(2)
	r.Capture(c)
	r.Capture(c)
	if r.Frames() != 2 {
		t.Fatalf("expected 2 frames, got %d", r.Frames())
	}
	if err := r.Save(t.TempDir() + "/out.gif"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if r.Frames() != 0 {
		t.Error("frames should be dropped after save")
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeOcean.Name)

	if GetTheme("nope").Name != ThemeOcean.Name {
		t.Error("unknown theme should fall back to ocean")
	}
	names := ThemeNames()
	for i := range names {
		if CurrentTheme.Name != names[i] {
			t.Fatalf("expected theme %s, got %s", names[i], CurrentTheme.Name)
		}
		NextTheme()
	}
	if CurrentTheme.Name != names[0] {
		t.Errorf("themes should cycle back to %s", names[0])
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("empty sparkline %q", got)
	}
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i)
	}
	out := SparklineChart(values, 10)
	if n := strings.Count(out, "█") + strings.Count(out, "▁"); n < 2 {
		t.Errorf("expected both extremes in %q", out)
	}
}
