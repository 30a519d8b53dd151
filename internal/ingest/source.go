package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
)

// Source is one ingestable input.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads from a local file.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s FileSource) Name() string { return s.Path }

// Open implements Source.
func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	return f, nil
}

// BytesSource reads from an in-memory payload.
type BytesSource struct {
	SourceName string
	Data       []byte
}

// Name implements Source.
func (s BytesSource) Name() string { return s.SourceName }

// Open implements Source.
func (s BytesSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

const streamBufBytes = 64 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

type multiCloser []io.Closer

func (m multiCloser) Close() (err error) {
	for _, c := range m {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// openStream opens the source and transparently decompresses gzip input,
// detected by magic bytes.
func openStream(ctx context.Context, src Source) (*bufio.Reader, io.Closer, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open source")
	}
	br := bufio.NewReaderSize(rc, streamBufBytes)
	magic, err := br.Peek(len(gzipMagic))
	if err == nil && bytes.Equal(magic, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, multierr.Append(errors.Wrap(err, "gzip"), rc.Close())
		}
		return bufio.NewReaderSize(zr, streamBufBytes), multiCloser{zr, rc}, nil
	}
	return br, rc, nil
}
