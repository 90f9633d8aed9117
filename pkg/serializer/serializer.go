// Package serializer 缓存载荷编解码：序列化后按需压缩，首字节记录压缩算法
package serializer

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/compress"
	"github.com/lk2023060901/creatorsim/pkg/config"
)

// Serializer 序列化器
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Format() Format
}

// Format 序列化格式
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// New 创建序列化器
func New(f Format) (Serializer, error) {
	switch f {
	case FormatJSON:
		return jsonSerializer{}, nil
	case FormatMsgpack, "":
		return msgpackSerializer{}, nil
	}
	return nil, errors.Newf("serializer: unsupported format %q", f)
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonSerializer) Deserialize(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonSerializer) Format() Format                       { return FormatJSON }

// Config 编解码配置
type Config struct {
	Format      Format        `mapstructure:"format" validate:"omitempty,oneof=json msgpack"`
	Compression compress.Type `mapstructure:"compression" validate:"omitempty,oneof=none snappy zstd lz4"`
	// MinCompressSize 小于该字节数的载荷不压缩
	MinCompressSize int `mapstructure:"min_compress_size"`
}

// DefaultConfig 默认 msgpack + snappy
func DefaultConfig() *Config {
	return &Config{
		Format:          FormatMsgpack,
		Compression:     compress.TypeSnappy,
		MinCompressSize: 256,
	}
}

// Codec 序列化 + 压缩
// 载荷格式：1 字节压缩标识 + 数据；读取时按标识解压，可兼容切换压缩算法前写入的数据
type Codec struct {
	serializer Serializer
	compressor compress.Compressor
	tag        byte
	minSize    int

	readers map[byte]compress.Compressor
}

// NewCodec 创建编解码器
func NewCodec(cfg *Config) (*Codec, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	s, err := New(merged.Format)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		serializer: s,
		minSize:    merged.MinCompressSize,
		readers:    make(map[byte]compress.Compressor),
	}
	for _, t := range []compress.Type{compress.TypeNone, compress.TypeSnappy, compress.TypeZstd, compress.TypeLZ4} {
		comp, err := compress.New(t)
		if err != nil {
			return nil, err
		}
		tag, _ := t.Tag()
		c.readers[tag] = comp
	}

	tag, ok := merged.Compression.Tag()
	if !ok {
		return nil, errors.Wrapf(compress.ErrUnsupported, "type=%s", merged.Compression)
	}
	c.tag, c.compressor = tag, c.readers[tag]
	return c, nil
}

// Format 序列化格式
func (c *Codec) Format() Format {
	return c.serializer.Format()
}

// Marshal 序列化并按阈值压缩
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := c.serializer.Serialize(v)
	if err != nil {
		return nil, errors.Wrap(err, "serialize")
	}

	tag, body := byte(0), data
	if len(data) >= c.minSize && c.compressor.Type() != compress.TypeNone {
		packed, err := c.compressor.Compress(data)
		if err != nil {
			return nil, errors.Wrap(err, "compress")
		}
		if len(packed) < len(data) {
			tag, body = c.tag, packed
		}
	}

	out := make([]byte, 0, len(body)+1)
	out = append(out, tag)
	return append(out, body...), nil
}

// Unmarshal 解压并反序列化
func (c *Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return errors.New("serializer: empty payload")
	}
	comp, ok := c.readers[data[0]]
	if !ok {
		return errors.Newf("serializer: unknown compression tag %d", data[0])
	}
	body, err := comp.Decompress(data[1:])
	if err != nil {
		return errors.Wrapf(err, "decompress %s", comp.Type())
	}
	if err := c.serializer.Deserialize(body, v); err != nil {
		return errors.Wrap(err, "deserialize")
	}
	return nil
}
