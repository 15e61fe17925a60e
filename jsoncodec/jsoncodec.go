// Package jsoncodec converts between JSON and the FEEL Value domain for
// external I/O: input contexts in, result objects out. This is a
// collaborator, not core engine logic — it wraps encoding/json directly
// rather than inventing a parallel codec.
package jsoncodec

import (
	"encoding/json"
	"fmt"

	"github.com/dmnfeel/engine/core/types"
)

// DecodeContext parses a JSON object into a root Context value. Only a
// JSON object is valid at the root; anything else is an error.
func DecodeContext(data []byte) (*types.Context, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("jsoncodec: root must be a JSON object: %w", err)
	}
	// json.Unmarshal into a map loses key order; recover it from a token
	// scan so insertion order in the resulting Context matches the source.
	order, err := objectKeyOrder(data)
	if err != nil {
		return nil, err
	}
	ctx := types.NewContext()
	for _, k := range order {
		v, err := decodeValue(raw[k])
		if err != nil {
			return nil, fmt.Errorf("jsoncodec: key %q: %w", k, err)
		}
		ctx.Set(k, v)
	}
	return ctx, nil
}

// objectKeyOrder returns a JSON object's top-level keys in source order,
// using json.Decoder's token stream since encoding/json's map decoding
// does not preserve it.
func objectKeyOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytesReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("jsoncodec: root must be a JSON object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("jsoncodec: malformed object key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func decodeValue(raw json.RawMessage) (types.Value, error) {
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return types.Null, err
	}
	return decodeAny(probe, raw)
}

func decodeAny(probe interface{}, raw json.RawMessage) (types.Value, error) {
	switch v := probe.(type) {
	case nil:
		return types.Null, nil
	case bool:
		return types.Bool(v), nil
	case string:
		return types.String(v), nil
	case float64:
		return types.NumberFromFloat(v), nil
	case []interface{}:
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return types.Null, err
		}
		items := make([]types.Value, len(arr))
		for i, r := range arr {
			item, err := decodeValue(r)
			if err != nil {
				return types.Null, err
			}
			items[i] = item
		}
		return types.List(items), nil
	case map[string]interface{}:
		keys, err := objectKeyOrder(raw)
		if err != nil {
			return types.Null, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return types.Null, err
		}
		ctx := types.NewContext()
		for _, k := range keys {
			fv, err := decodeValue(fields[k])
			if err != nil {
				return types.Null, err
			}
			ctx.Set(k, fv)
		}
		return types.FromContext(ctx), nil
	default:
		return types.Null, fmt.Errorf("jsoncodec: unsupported JSON value %T", v)
	}
}

// EncodeContext serializes a result Context (one key per decision) into a
// JSON object, using this mapping: Context->object, List->array,
// Null->null, temporal->ISO 8601 string, Range->{start, end, "start
// included", "end included"}.
func EncodeContext(ctx *types.Context) ([]byte, error) {
	return json.Marshal(encodeContext(ctx))
}

func encodeContext(ctx *types.Context) *orderedObject {
	obj := newOrderedObject(ctx.Len())
	for _, k := range ctx.Keys() {
		v, _ := ctx.Get(k)
		obj.set(k, EncodeValue(v))
	}
	return obj
}

// EncodeValue converts one Value to its JSON-marshalable representation.
func EncodeValue(v types.Value) interface{} {
	switch v.Kind {
	case types.KindNull:
		return nil
	case types.KindBoolean:
		return v.Bool
	case types.KindNumber:
		f, _ := v.Num.Float64()
		return f
	case types.KindString:
		return v.Str
	case types.KindList:
		items := make([]interface{}, len(v.List))
		for i, item := range v.List {
			items[i] = EncodeValue(item)
		}
		return items
	case types.KindContext:
		return encodeContext(v.Ctx)
	case types.KindRange:
		obj := newOrderedObject(4)
		obj.set("start", EncodeValue(v.Rng.Low))
		obj.set("end", EncodeValue(v.Rng.High))
		obj.set("start included", v.Rng.LowInclusive)
		obj.set("end included", v.Rng.HighInclusive)
		return obj
	case types.KindDate:
		return v.Time.Format("2006-01-02")
	case types.KindTime:
		return v.Time.Format("15:04:05")
	case types.KindDateTime:
		return v.Time.Format("2006-01-02T15:04:05")
	case types.KindDuration:
		return v.String()
	case types.KindFunction:
		return nil
	default:
		return nil
	}
}
