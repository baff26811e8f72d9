package streaming

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for range parsing.
var (
	// ErrUnsatisfiable indicates a syntactically valid range that cannot be
	// served: start beyond the end of the file, or start after end.
	ErrUnsatisfiable = errors.New("requested range not satisfiable")

	// ErrMalformed indicates a Range header that does not follow
	// "bytes=<start>-<end?>". Callers should ignore the header and serve
	// the full file, per RFC 7233.
	ErrMalformed = errors.New("malformed range header")
)

// ByteRange is an inclusive byte span within a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the range covers.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange parses a "bytes=<start>-<end>" header against a file of the
// given size. A missing end defaults to size-1; an end past the file is
// clamped to size-1. start is required. start >= size or start > end yields
// ErrUnsatisfiable. Multi-range requests are not supported and parse as
// malformed.
func ParseRange(header string, size int64) (ByteRange, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return ByteRange{}, ErrMalformed
	}
	if strings.Contains(spec, ",") {
		return ByteRange{}, ErrMalformed
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok || startStr == "" {
		return ByteRange{}, ErrMalformed
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return ByteRange{}, ErrMalformed
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < 0 {
			return ByteRange{}, ErrMalformed
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size || start > end {
		return ByteRange{}, ErrUnsatisfiable
	}
	return ByteRange{Start: start, End: end}, nil
}
