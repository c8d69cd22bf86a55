package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func fill(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, fill(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int, c color.Color) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, fill(w, h, c))
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestJPEG(100, 80)))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if photo.ContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.ContentType)
	}
	if photo.Width != 100 || photo.Height != 80 {
		t.Errorf("expected 100x80, got %dx%d", photo.Width, photo.Height)
	}
	if len(photo.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPNGFlattensAlpha(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestPNG(20, 20, color.RGBA{0, 0, 0, 0})))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if photo.ContentType != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", photo.ContentType)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected transparent pixels to become white, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestProcessGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 30, 10), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, pal, nil); err != nil {
		t.Fatal(err)
	}
	photo, err := Process(&buf)
	if err != nil {
		t.Fatalf("Process GIF: %v", err)
	}
	if photo.Width != 30 || photo.Height != 10 {
		t.Errorf("expected 30x10, got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessDownscale(t *testing.T) {
	tests := []struct {
		w, h          int
		wantW, wantH  int
	}{
		{2048, 2048, 1024, 1024},
		{2048, 1024, 1024, 512},
		{500, 3000, 170, 1024},
	}
	for _, tt := range tests {
		photo, err := Process(bytes.NewReader(createTestJPEG(tt.w, tt.h)))
		if err != nil {
			t.Fatalf("Process %dx%d: %v", tt.w, tt.h, err)
		}
		if photo.Width != tt.wantW || photo.Height != tt.wantH {
			t.Errorf("%dx%d: expected %dx%d, got %dx%d", tt.w, tt.h, tt.wantW, tt.wantH, photo.Width, photo.Height)
		}

		img, _, err := image.Decode(bytes.NewReader(photo.Data))
		if err != nil {
			t.Fatalf("decoding result: %v", err)
		}
		if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
			t.Errorf("encoded size %v does not match reported size", img.Bounds())
		}
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	photo, err := Process(bytes.NewReader(createTestJPEG(50, 50)))
	if err != nil {
		t.Fatalf("Process small image: %v", err)
	}
	if photo.Width != 50 || photo.Height != 50 {
		t.Errorf("small image should not be resized: got %dx%d", photo.Width, photo.Height)
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestProcessTruncatedImage(t *testing.T) {
	data := createTestPNG(10, 10, color.White)
	_, err := Process(bytes.NewReader(data[:len(data)/2]))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestProcessTooLarge(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, "\x89PNG\r\n\x1a\n")
	_, err := Process(bytes.NewReader(data))
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
