// Package compress 缓存载荷压缩
package compress

import (
	"github.com/cockroachdb/errors"
)

// ErrUnsupported 未知压缩算法
var ErrUnsupported = errors.New("compress: unsupported type")

// Compressor 压缩器，实现需并发安全
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
	Type() Type
}

// Type 压缩算法
type Type string

const (
	TypeNone   Type = "none"
	TypeSnappy Type = "snappy"
	TypeZstd   Type = "zstd"
	TypeLZ4    Type = "lz4"
)

// 载荷头使用的单字节标识，写入后不可更改
var tags = map[Type]byte{
	TypeNone:   0,
	TypeSnappy: 1,
	TypeZstd:   2,
	TypeLZ4:    3,
}

// Tag 算法的单字节标识
func (t Type) Tag() (byte, bool) {
	tag, ok := tags[t]
	return tag, ok
}

// FromTag 由单字节标识反查算法
func FromTag(tag byte) (Type, bool) {
	for t, v := range tags {
		if v == tag {
			return t, true
		}
	}
	return "", false
}

// New 创建压缩器，空类型视为 none
func New(t Type) (Compressor, error) {
	switch t {
	case TypeNone, "":
		return noneCompressor{}, nil
	case TypeSnappy:
		return snappyCompressor{}, nil
	case TypeZstd:
		return newZstdCompressor()
	case TypeLZ4:
		return lz4Compressor{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupported, "type=%s", t)
}
