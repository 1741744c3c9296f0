package uploader

import (
	"bytes"
	"context"
	"io"
	"os"
)

// MediaSource resolves the local media reference to a readable byte stream.
// It is opened lazily at transfer time, not when the upload starts, since
// the clip may still be finalizing on disk when the attempt begins.
type MediaSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource reads the media from a file on disk.
func FileSource(path string) MediaSource {
	return fileSource{path: path}
}

func (s fileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.path)
}

type bytesSource struct {
	data []byte
}

// BytesSource serves the media from an in-memory buffer.
func BytesSource(data []byte) MediaSource {
	return bytesSource{data: data}
}

func (s bytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
