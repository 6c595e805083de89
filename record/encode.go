package record

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CaliLuke/go-record/schema"
)

// BooleanConverter is the connection collaborator surface the changeset
// builder needs: converting a boolean value to its storage representation.
// The conn package's backends satisfy it.
type BooleanConverter interface {
	ConvertBoolean(v any) any
}

// flatten encodes a structured (array or object) value to portable bytes.
func flatten(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// unflatten decodes a flattened structured value.
func unflatten(data []byte) (any, error) {
	var out any
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compressText gzips large text or blob data for storage.
func compressText(v any) ([]byte, error) {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		return nil, fmt.Errorf("compressed field requires string or bytes, got %T", v)
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressText reverses compressText, returning the text as a string.
func decompressText(data []byte) (string, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// encodeField applies the declared storage encoding for one field value. The
// conv argument is consulted for boolean fields only and may be nil for
// paths that never touch a connection (serialization).
func (r *Record) encodeField(name string, v any, conv BooleanConverter) (any, error) {
	ft, _ := r.desc.FieldType(name)
	switch ft {
	case schema.FieldArray, schema.FieldObject:
		data, err := flatten(v)
		if err != nil {
			return nil, &EncodingError{TypeName: r.desc.TypeName(), Field: name, Cause: err}
		}
		return data, nil

	case schema.FieldCompressedText:
		data, err := compressText(v)
		if err != nil {
			return nil, &EncodingError{TypeName: r.desc.TypeName(), Field: name, Cause: err}
		}
		return data, nil

	case schema.FieldBoolean:
		if conv == nil {
			return v, nil
		}
		return conv.ConvertBoolean(v), nil

	case schema.FieldEnumerated:
		s, ok := v.(string)
		if !ok {
			return nil, &EncodingError{TypeName: r.desc.TypeName(), Field: name,
				Cause: fmt.Errorf("enumerated value must be a string, got %T", v)}
		}
		code, ok := r.desc.EnumCodeOf(name, s)
		if !ok {
			return nil, &EncodingError{TypeName: r.desc.TypeName(), Field: name,
				Cause: fmt.Errorf("%q is not a member of the enumeration", s)}
		}
		return code, nil

	default:
		return v, nil
	}
}

// decodeField reverses the storage encoding for one field value, using the
// class metadata for the concrete type.
func decodeField(desc *schema.ClassDescriptor, name string, v any) (any, error) {
	ft, _ := desc.FieldType(name)
	switch ft {
	case schema.FieldArray, schema.FieldObject:
		data, ok := v.([]byte)
		if !ok {
			return v, nil
		}
		out, err := unflatten(data)
		if err != nil {
			return nil, &EncodingError{TypeName: desc.TypeName(), Field: name, Cause: err}
		}
		return out, nil

	case schema.FieldCompressedText:
		data, ok := v.([]byte)
		if !ok {
			return v, nil
		}
		out, err := decompressText(data)
		if err != nil {
			return nil, &EncodingError{TypeName: desc.TypeName(), Field: name, Cause: err}
		}
		return out, nil

	case schema.FieldEnumerated:
		code, ok := toInt64(v)
		if !ok {
			return v, nil
		}
		val, ok := desc.EnumValueOf(name, code)
		if !ok {
			return nil, &EncodingError{TypeName: desc.TypeName(), Field: name,
				Cause: fmt.Errorf("code %d is not a member of the enumeration", code)}
		}
		return val, nil

	default:
		return v, nil
	}
}

// toInt64 converts the integer types a decoder may produce.
func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	}
	return 0, false
}
