package compress

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type noneCompressor struct{}

func (noneCompressor) Compress(src []byte) ([]byte, error)   { return src, nil }
func (noneCompressor) Decompress(src []byte) ([]byte, error) { return src, nil }
func (noneCompressor) Type() Type                            { return TypeNone }

type snappyCompressor struct{}

func (snappyCompressor) Compress(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCompressor) Decompress(src []byte) ([]byte, error) {
	return snappy.Decode(nil, src)
}

func (snappyCompressor) Type() Type { return TypeSnappy }

// zstdCompressor EncodeAll/DecodeAll 可并发调用
type zstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newZstdCompressor() (*zstdCompressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(err, "create zstd encoder")
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	return &zstdCompressor{encoder: encoder, decoder: decoder}, nil
}

func (c *zstdCompressor) Compress(src []byte) ([]byte, error) {
	return c.encoder.EncodeAll(src, nil), nil
}

func (c *zstdCompressor) Decompress(src []byte) ([]byte, error) {
	return c.decoder.DecodeAll(src, nil)
}

func (c *zstdCompressor) Type() Type { return TypeZstd }

// lz4Compressor 块格式：uvarint 原始长度 + 压缩块；不可压缩时直接拼接原文，以块长等于原始长度区分
type lz4Compressor struct{}

func (lz4Compressor) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(src)))
	hdr := binary.PutUvarint(dst, uint64(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst[hdr:])
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	if n == 0 || n >= len(src) {
		// 不可压缩
		return append(dst[:hdr:hdr], src...), nil
	}
	return dst[:hdr+n], nil
}

func (lz4Compressor) Decompress(src []byte) ([]byte, error) {
	size, hdr := binary.Uvarint(src)
	if hdr <= 0 {
		return nil, errors.New("lz4: invalid length header")
	}
	body := src[hdr:]
	if uint64(len(body)) == size {
		out := make([]byte, size)
		copy(out, body)
		return out, nil
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(body, out)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	if uint64(n) != size {
		return nil, errors.Newf("lz4: decoded %d bytes, want %d", n, size)
	}
	return out, nil
}

func (lz4Compressor) Type() Type { return TypeLZ4 }
