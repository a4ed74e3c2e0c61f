package value

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// MarshalJSON encodes v as its plain JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}

	return data, nil
}

// UnmarshalJSON decodes any JSON document into v. Numbers keep integer precision.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any

	err := decoder.Decode(&raw)
	if err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}

	*v = FromAny(raw)

	return nil
}
