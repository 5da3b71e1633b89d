package run

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Param is a single name/value assignment within a ParameterSet.
type Param struct {
	Name  string
	Value any
}

// ParameterSet is one concrete assignment of every sweep parameter, in
// declaration order. It serializes as a single JSON object whose key order
// is the declaration order, so the record written into a run directory reads
// the same way the sweep spec does.
type ParameterSet []Param

// Lookup returns the value bound to name, if any.
func (ps ParameterSet) Lookup(name string) (any, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// MarshalJSON renders the set as an object with keys in declaration order.
func (ps ParameterSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while preserving its key order. Integral
// numbers come back as int64 and everything else as float64, matching how
// sweep spec values are decoded in the first place.
func (ps *ParameterSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parameter record is not a JSON object")
	}

	out := ParameterSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("parameter record has non-string key %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", key, err)
		}
		out = append(out, Param{Name: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ps = out
	return nil
}

// decodeValue reads one JSON value from the decoder into a native Go value.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			list := []any{}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			obj := map[string]any{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("non-string key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj[key] = val
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool, nil
		return t, nil
	}
}
