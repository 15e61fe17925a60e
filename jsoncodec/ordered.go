package jsoncodec

import (
	"bytes"
	"encoding/json"
	"io"
)

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}

// orderedObject marshals as a JSON object preserving field insertion
// order, matching the Context values it mirrors (contexts preserve
// insertion order).
type orderedObject struct {
	keys   []string
	values map[string]interface{}
}

func newOrderedObject(capacity int) *orderedObject {
	return &orderedObject{values: make(map[string]interface{}, capacity)}
}

func (o *orderedObject) set(key string, value interface{}) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
