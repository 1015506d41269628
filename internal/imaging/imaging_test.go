package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessPNGBecomesJPEG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(100, 60)), PreviewDimension)
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if result.Width != 100 || result.Height != 60 {
		t.Errorf("small image should keep its size, got %dx%d", result.Width, result.Height)
	}
}

func TestProcessDownscaleKeepsAspect(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestJPEG(1600, 800)), 400)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 200 {
		t.Errorf("expected 400x200, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessRejectsOtherFormats(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a...")} {
		if _, err := Process(bytes.NewReader(data), PreviewDimension); err == nil {
			t.Errorf("expected error for %q", data)
		}
	}
}

func TestPreviewRoundTrip(t *testing.T) {
	uri, err := Preview(createTestPNG(20, 20))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected preview prefix: %.40s", uri)
	}

	mime, data, err := ParseDataURI(uri)
	if err != nil {
		t.Fatalf("ParseDataURI: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", mime)
	}
	if _, err := Sniff(data); err != nil {
		t.Errorf("decoded preview is not an image: %v", err)
	}
}

func TestParseDataURIErrors(t *testing.T) {
	tests := []string{
		"https://x/a.png",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,!!!",
	}
	for _, uri := range tests {
		if _, _, err := ParseDataURI(uri); err == nil {
			t.Errorf("ParseDataURI(%q): expected error", uri)
		}
	}
}
