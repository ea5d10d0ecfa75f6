package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// field is one key of an explicitly ordered JSON object. Values are string,
// bool or object.
type field struct {
	key   string
	value any
}

// object is a JSON object whose key order is the slice order.
type object []field

// filter drops empty strings and recurses into nested objects. Objects and
// booleans are always kept, so an empty mods map still renders as {}.
func filter(o object) object {
	out := make(object, 0, len(o))
	for _, f := range o {
		switch v := f.value.(type) {
		case string:
			if v == "" {
				continue
			}
		case object:
			f.value = filter(v)
		}
		out = append(out, f)
	}
	return out
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalLiteral(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		switch v := f.value.(type) {
		case object:
			val, err = v.MarshalJSON()
		case string, bool:
			val, err = marshalLiteral(v)
		default:
			err = fmt.Errorf("workflow: unsupported value %T for key %q", v, f.key)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalLiteral encodes a scalar without HTML escaping.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
