package serializer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/pkg/compress"
)

type snapshot struct {
	Metric  string    `json:"metric"`
	Names   []string  `json:"names"`
	Total   int64     `json:"total"`
	BuiltAt time.Time `json:"builtAt"`
}

func sample() *snapshot {
	names := make([]string, 200)
	for i := range names {
		names[i] = "creator-channel"
	}
	return &snapshot{
		Metric:  "subscribers",
		Names:   names,
		Total:   200,
		BuiltAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	cases := []*Config{
		{Format: FormatJSON, Compression: compress.TypeNone},
		{Format: FormatJSON, Compression: compress.TypeZstd},
		{Format: FormatMsgpack, Compression: compress.TypeSnappy},
		{Format: FormatMsgpack, Compression: compress.TypeLZ4},
	}
	for _, cfg := range cases {
		t.Run(string(cfg.Format)+"/"+string(cfg.Compression), func(t *testing.T) {
			c, err := NewCodec(cfg)
			require.NoError(t, err)
			assert.Equal(t, cfg.Format, c.Format())

			data, err := c.Marshal(sample())
			require.NoError(t, err)

			var out snapshot
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, sample().Names, out.Names)
			assert.Equal(t, int64(200), out.Total)
			assert.True(t, sample().BuiltAt.Equal(out.BuiltAt))
		})
	}
}

func TestSmallPayloadNotCompressed(t *testing.T) {
	c, err := NewCodec(&Config{Format: FormatJSON, Compression: compress.TypeSnappy, MinCompressSize: 1024})
	require.NoError(t, err)

	data, err := c.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, byte(0), data[0])
	assert.JSONEq(t, `{"a":1}`, string(data[1:]))
}

func TestReadsPayloadOfOtherCompression(t *testing.T) {
	writer, err := NewCodec(&Config{Format: FormatMsgpack, Compression: compress.TypeZstd})
	require.NoError(t, err)
	reader, err := NewCodec(&Config{Format: FormatMsgpack, Compression: compress.TypeSnappy})
	require.NoError(t, err)

	data, err := writer.Marshal(sample())
	require.NoError(t, err)
	tag, _ := compress.TypeZstd.Tag()
	assert.Equal(t, tag, data[0])

	var out snapshot
	require.NoError(t, reader.Unmarshal(data, &out))
	assert.Equal(t, "subscribers", out.Metric)
}

func TestCodecErrors(t *testing.T) {
	_, err := NewCodec(&Config{Format: "xml"})
	assert.Error(t, err)

	_, err = NewCodec(&Config{Compression: "brotli"})
	assert.ErrorIs(t, err, compress.ErrUnsupported)

	c, err := NewCodec(nil)
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, c.Format())

	var out snapshot
	assert.Error(t, c.Unmarshal(nil, &out))
	err = c.Unmarshal([]byte{0x7f, 1, 2}, &out)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown compression tag"))
}
