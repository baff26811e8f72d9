package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"dailies-server/internal/logging"
	"dailies-server/internal/metrics"
)

// ErrClientGone indicates the client disconnected before the stream
// completed. It is detected via the request context and is not a server
// error.
var ErrClientGone = errors.New("client disconnected")

// chunkSize is the copy granularity. Each chunk is followed by a flush and a
// cancellation check, so a disconnected client releases its file handle
// within one chunk.
const chunkSize = 256 * 1024

// contentType is fixed for all streamed dailies; the catalog only admits
// container formats browsers play as video/mp4 in this deployment.
const contentType = "video/mp4"

// ServeVideo streams the file at path honoring an optional Range header.
//
// Without a Range header the full file is sent with status 200. With
// "bytes=<start>-<end?>" the exact span is sent with status 206 and a
// Content-Range header; end defaults to (and is clamped to) the last byte.
// An unsatisfiable range gets 416 with "Content-Range: bytes */<size>".
// A malformed Range header is ignored and the full file is served.
//
// The caller is expected to have verified the file exists; a vanished file
// still returns os.ErrNotExist for the handler to map to 404.
func ServeVideo(w http.ResponseWriter, r *http.Request, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close video file %s: %v", path, err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	metrics.StreamsActive.Inc()
	defer metrics.StreamsActive.Dec()

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		return copyChunked(r.Context(), w, file, size)
	}

	byteRange, err := ParseRange(rangeHeader, size)
	if errors.Is(err, ErrMalformed) {
		logging.Debug("ignoring malformed range header %q for %s", rangeHeader, path)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		return copyChunked(r.Context(), w, file, size)
	}
	if errors.Is(err, ErrUnsatisfiable) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to range start: %w", err)
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", byteRange.Start, byteRange.End, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", byteRange.Length()))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusPartialContent)
	return copyChunked(r.Context(), w, file, byteRange.Length())
}

// copyChunked copies exactly total bytes in chunkSize pieces, flushing after
// each chunk and aborting as soon as the request context is canceled.
func copyChunked(ctx context.Context, w http.ResponseWriter, src io.Reader, total int64) error {
	flusher, _ := w.(http.Flusher)

	remaining := total
	for remaining > 0 {
		select {
		case <-ctx.Done():
			return ErrClientGone
		default:
		}

		n := int64(chunkSize)
		if remaining < n {
			n = remaining
		}

		written, err := io.CopyN(w, src, n)
		remaining -= written
		metrics.StreamBytesTotal.Add(float64(written))

		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) {
				return ErrClientGone
			}
			return err
		}

		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}
