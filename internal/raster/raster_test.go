package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestExpand_AllValues(t *testing.T) {
	src := NewBuffer8(256, 1)
	for v := 0; v < 256; v++ {
		src.Set(v, 0, uint8(v), uint8(v), uint8(v))
	}

	out := Expand(src)

	if out.Width != 256 || out.Height != 1 {
		t.Fatalf("dimensions: got %dx%d, want 256x1", out.Width, out.Height)
	}
	for v := 0; v < 256; v++ {
		r, g, b := out.At(v, 0)
		want := uint16(v * 257)
		if r != want || g != want || b != want {
			t.Errorf("Expand(%d): got (%d,%d,%d), want %d", v, r, g, b, want)
		}
	}
	if r, _, _ := out.At(255, 0); r != 65535 {
		t.Errorf("Expand(255): got %d, want 65535", r)
	}
}

func TestExpand_DoesNotMutateInput(t *testing.T) {
	src := NewBuffer8(2, 2)
	for i := range src.Pix {
		src.Pix[i] = 128
	}

	out := Expand(src)

	for i, v := range src.Pix {
		if v != 128 {
			t.Fatalf("input sample %d changed to %d", i, v)
		}
	}
	for i, v := range out.Pix {
		if v != 32896 {
			t.Errorf("sample %d: got %d, want 32896", i, v)
		}
	}
}

func TestFromImage_DropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 50, B: 10, A: 64})
		}
	}

	buf := FromImage(img)

	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("dimensions: got %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if len(buf.Pix) != 3*2*3 {
		t.Fatalf("Pix length: got %d, want 18", len(buf.Pix))
	}
	r, g, b := buf.At(2, 1)
	if r != 200 || g != 50 || b != 10 {
		t.Errorf("straight RGB not kept: got (%d,%d,%d), want (200,50,10)", r, g, b)
	}
}

func TestFromImage_GrayAndOffsetBounds(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 14, 22))
	img.SetGray(13, 21, color.Gray{Y: 77})

	buf := FromImage(img)

	if buf.Width != 4 || buf.Height != 2 {
		t.Fatalf("dimensions: got %dx%d, want 4x2", buf.Width, buf.Height)
	}
	r, g, b := buf.At(3, 1)
	if r != 77 || g != 77 || b != 77 {
		t.Errorf("gray pixel: got (%d,%d,%d), want (77,77,77)", r, g, b)
	}
}

func TestBuffer16_Image(t *testing.T) {
	buf := NewBuffer16(2, 1)
	buf.Set(1, 0, 65535, 32896, 1)

	img := buf.Image()

	c := img.RGBA64At(1, 0)
	if c.R != 65535 || c.G != 32896 || c.B != 1 || c.A != 0xffff {
		t.Errorf("RGBA64At: got %+v", c)
	}
	if !img.Opaque() {
		t.Error("16-bit image should be opaque")
	}
}

func TestBuffer8_ImageRoundTrip(t *testing.T) {
	buf := NewBuffer8(2, 2)
	buf.Set(0, 1, 1, 2, 3)

	back := FromImage(buf.Image())

	r, g, b := back.At(0, 1)
	if r != 1 || g != 2 || b != 3 {
		t.Errorf("round trip: got (%d,%d,%d), want (1,2,3)", r, g, b)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		buf     *Buffer16
		wantErr bool
	}{
		{"valid", NewBuffer16(2, 3), false},
		{"zero width", &Buffer16{Width: 0, Height: 2}, true},
		{"short pix", &Buffer16{Width: 2, Height: 2, Pix: make([]uint16, 5)}, true},
		{"long pix", &Buffer16{Width: 1, Height: 1, Pix: make([]uint16, 4)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.buf.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrDimensions) {
				t.Errorf("error should wrap ErrDimensions: %v", err)
			}
		})
	}
}
