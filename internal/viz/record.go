package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	dotW = 4
	dotH = 4
)

// Recorder collects canvas frames into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int // hundredths of a second between frames
}

func NewRecorder(delay int) *Recorder {
	return &Recorder{delay: delay}
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture renders every lit braille dot as a dotW x dotH block.
func (r *Recorder) Capture(c *Canvas) {
	r.frames = append(r.frames, CanvasImage(c))
}

// Save writes the recording to path and drops the captured frames.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	r.frames = r.frames[:0]
	return nil
}

func CanvasImage(c *Canvas) *image.Paletted {
	w, h := c.Width*2, c.Height*4
	img := image.NewPaletted(image.Rect(0, 0, w*dotW, h*dotH), color.Palette{color.Black, color.RGBA{0x00, 0xa8, 0xcc, 0xff}})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}
