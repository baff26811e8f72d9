package streaming

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestParseRange(t *testing.T) {
	const size = 1000

	tests := []struct {
		name   string
		header string
		start  int64
		end    int64
		err    error
	}{
		{"full span", "bytes=0-999", 0, 999, nil},
		{"middle", "bytes=100-199", 100, 199, nil},
		{"open ended", "bytes=500-", 500, 999, nil},
		{"end clamped", "bytes=900-5000", 900, 999, nil},
		{"single byte", "bytes=0-0", 0, 0, nil},
		{"start past end of file", "bytes=1000-", 0, 0, ErrUnsatisfiable},
		{"start after end", "bytes=200-100", 0, 0, ErrUnsatisfiable},
		{"missing prefix", "0-100", 0, 0, ErrMalformed},
		{"suffix form unsupported", "bytes=-500", 0, 0, ErrMalformed},
		{"multi-range", "bytes=0-1,5-9", 0, 0, ErrMalformed},
		{"garbage start", "bytes=abc-100", 0, 0, ErrMalformed},
		{"garbage end", "bytes=0-xyz", 0, 0, ErrMalformed},
		{"empty", "", 0, 0, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, size)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Expected error %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange failed: %v", err)
			}
			if got.Start != tt.start || got.End != tt.end {
				t.Errorf("Expected %d-%d, got %d-%d", tt.start, tt.end, got.Start, got.End)
			}
		})
	}
}

func TestByteRangeLength(t *testing.T) {
	r := ByteRange{Start: 100, End: 199}
	if r.Length() != 100 {
		t.Errorf("Expected length 100, got %d", r.Length())
	}
	single := ByteRange{Start: 0, End: 0}
	if single.Length() != 1 {
		t.Errorf("Expected length 1, got %d", single.Length())
	}
}

// testVideo writes a 1000-byte file whose content encodes each byte's offset,
// so body assertions catch off-by-one seeks.
func testVideo(t *testing.T) string {
	t.Helper()
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func serve(t *testing.T, path, rangeHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/video/clip.mp4/stream", nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	w := httptest.NewRecorder()
	if err := ServeVideo(w, req, path); err != nil {
		t.Fatalf("ServeVideo failed: %v", err)
	}
	return w
}

func TestServeVideoFullFile(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if cl := w.Header().Get("Content-Length"); cl != "1000" {
		t.Errorf("Expected Content-Length 1000, got %s", cl)
	}
	if ct := w.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Expected video/mp4, got %s", ct)
	}
	if w.Body.Len() != 1000 {
		t.Errorf("Expected 1000 body bytes, got %d", w.Body.Len())
	}
}

func TestServeVideoPartialContent(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "bytes=100-199")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 100-199/1000" {
		t.Errorf("Expected Content-Range bytes 100-199/1000, got %s", cr)
	}
	if cl := w.Header().Get("Content-Length"); cl != "100" {
		t.Errorf("Expected Content-Length 100, got %s", cl)
	}
	if ar := w.Header().Get("Accept-Ranges"); ar != "bytes" {
		t.Errorf("Expected Accept-Ranges bytes, got %s", ar)
	}

	body := w.Body.Bytes()
	if len(body) != 100 {
		t.Fatalf("Expected 100 body bytes, got %d", len(body))
	}
	expected := make([]byte, 100)
	for i := range expected {
		expected[i] = byte((100 + i) % 251)
	}
	if !bytes.Equal(body, expected) {
		t.Error("Body does not match the requested byte span")
	}
}

func TestServeVideoOpenEndedRange(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "bytes=900-")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 900-999/1000" {
		t.Errorf("Expected Content-Range bytes 900-999/1000, got %s", cr)
	}
	if w.Body.Len() != 100 {
		t.Errorf("Expected 100 body bytes, got %d", w.Body.Len())
	}
}

func TestServeVideoClampsOverlongEnd(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "bytes=990-99999")

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes 990-999/1000" {
		t.Errorf("Expected clamped Content-Range, got %s", cr)
	}
	if cl, _ := strconv.Atoi(w.Header().Get("Content-Length")); cl != 10 {
		t.Errorf("Expected Content-Length 10, got %d", cl)
	}
}

func TestServeVideoUnsatisfiableRange(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "bytes=2000-")

	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("Expected 416, got %d", w.Code)
	}
	if cr := w.Header().Get("Content-Range"); cr != "bytes */1000" {
		t.Errorf("Expected Content-Range bytes */1000, got %s", cr)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %d bytes", w.Body.Len())
	}
}

func TestServeVideoIgnoresMalformedRange(t *testing.T) {
	path := testVideo(t)
	w := serve(t, path, "bytes=broken")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected full-file 200 for malformed range, got %d", w.Code)
	}
	if w.Body.Len() != 1000 {
		t.Errorf("Expected full body, got %d bytes", w.Body.Len())
	}
}

func TestServeVideoMissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/video/gone.mp4/stream", nil)
	w := httptest.NewRecorder()

	err := ServeVideo(w, req, filepath.Join(t.TempDir(), "gone.mp4"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}
