package artifact

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// decodeInto unmarshals one artifact payload and appends it to out, which
// must be a pointer to a slice. Returns an error for malformed payloads so
// callers can decide to skip them.
func decodeInto(out any, data []byte) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("artifact: out must be a pointer to a slice, got %T", out)
	}

	slice := v.Elem()
	elem := reflect.New(slice.Type().Elem())
	if err := json.Unmarshal(data, elem.Interface()); err != nil {
		return err
	}
	slice.Set(reflect.Append(slice, elem.Elem()))
	return nil
}

// decodeIntoSingle unmarshals one payload directly into out (a pointer to a
// struct rather than a slice).
func decodeIntoSingle(out any, data []byte) error {
	return json.Unmarshal(data, out)
}

// encode marshals a payload the way every artifact is written: indented JSON
// with a trailing newline, so files are diffable and replayable byte for byte.
func encode(payload any) ([]byte, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	return append(data, '\n'), nil
}
