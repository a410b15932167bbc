//go:build ocr

package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/otiai10/gosseract/v2"
)

// Run with: go test -tags ocr ./internal/export/
// Needs libtesseract and the English traineddata installed.
func TestCompose_CaptionsAreLegible(t *testing.T) {
	const w, h = 480, 120
	img := Compose(uniform8(t, w, h, 230), uniform8(t, w, h, 40), DefaultCaptionStyle())

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode comparison: %v", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage("eng"); err != nil {
		t.Fatalf("failed to set language: %v", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("failed to set image: %v", err)
	}
	text, err := client.Text()
	if err != nil {
		t.Fatalf("OCR failed: %v", err)
	}

	upper := strings.ToUpper(text)
	for _, want := range []string{"ORIGINAL", "GRADED"} {
		if !strings.Contains(upper, want) {
			t.Errorf("OCR text %q should contain %s", text, want)
		}
	}
}
