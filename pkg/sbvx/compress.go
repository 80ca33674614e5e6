package sbvx

import (
	"compress/flate"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/chazu/vxcsg/pkg/cell"
)

// CompressionKind selects the outer compression wrapper applied around an
// SBVX stream.
type CompressionKind int

const (
	CompressionNone CompressionKind = iota
	CompressionDeflate
	CompressionZstd
)

// Level selects a speed/size tradeoff, independent of the underlying
// codec's own numeric scale.
type Level int

const (
	LevelFastest Level = iota
	LevelBalanced
	LevelSmallest
)

func deflateLevel(l Level) int {
	switch l {
	case LevelFastest:
		return flate.BestSpeed
	case LevelSmallest:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

func zstdLevel(l Level) zstd.EncoderLevel {
	switch l {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelSmallest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// CompressWriter wraps w with the requested compression kind. The caller
// must Close the returned writer to flush trailing bytes.
func CompressWriter(w io.Writer, kind CompressionKind, level Level) (io.WriteCloser, error) {
	switch kind {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionDeflate:
		fw, err := flate.NewWriter(w, deflateLevel(level))
		if err != nil {
			return nil, cell.Wrap(cell.IoError, "sbvx.CompressWriter", err, "creating deflate writer")
		}
		return fw, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, cell.Wrap(cell.IoError, "sbvx.CompressWriter", err, "creating zstd writer")
		}
		return zw, nil
	default:
		return nil, cell.Newf(cell.InvalidArgument, "sbvx.CompressWriter", "unknown compression kind %d", kind)
	}
}

// DecompressReader wraps r with the inverse of CompressWriter's kind.
func DecompressReader(r io.Reader, kind CompressionKind) (io.ReadCloser, error) {
	switch kind {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionDeflate:
		return flate.NewReader(r), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, cell.Wrap(cell.IoError, "sbvx.DecompressReader", err, "creating zstd reader")
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, cell.Newf(cell.InvalidArgument, "sbvx.DecompressReader", "unknown compression kind %d", kind)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
