package serializer

import (
	"reflect"

	"github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/valyala/bytebufferpool"
)

// msgpackHandle 结构体字段按 codec、json tag 命名，与 HTTP 输出保持同名
var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]any{})
	msgpackHandle.RawToString = true
}

var buffers bytebufferpool.Pool

type msgpackSerializer struct{}

func (msgpackSerializer) Serialize(v any) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := codec.NewEncoder(buf, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}
	// buf 归还后会被复用
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func (msgpackSerializer) Deserialize(data []byte, v any) error {
	return codec.NewDecoderBytes(data, msgpackHandle).Decode(v)
}

func (msgpackSerializer) Format() Format { return FormatMsgpack }
