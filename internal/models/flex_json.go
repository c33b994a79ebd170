package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// jsonFieldMaps caches JSON tag -> struct field index mappings per type
var jsonFieldMaps sync.Map

func jsonFieldMap(t reflect.Type) map[string]int {
	if cached, ok := jsonFieldMaps.Load(t); ok {
		return cached.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		m[name] = i
	}
	jsonFieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts native JSON integers as well as floats and
// numeric strings ("2", "2.0"). Fractional parts are truncated. A value
// that cannot be coerced yields a *ValidationError naming the field.
func (r *PredictRequest) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias PredictRequest
	a := (*Alias)(r)

	// Fast path: all values are native integers
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	// Slow path: field-by-field with coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	*r = PredictRequest{}
	fieldMap := jsonFieldMap(reflect.TypeOf(*a))
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if err := coerceField(fv, rawVal); err != nil {
			return &ValidationError{Field: key, Reason: err.Error()}
		}
	}

	return nil
}

// coerceField converts a JSON number or numeric string into the field's native type.
func coerceField(fv reflect.Value, rawVal json.RawMessage) error {
	s := string(bytes.TrimSpace(rawVal))
	if len(s) > 1 && s[0] == '"' {
		if err := json.Unmarshal(rawVal, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return fmt.Errorf("empty value")
	}

	target := fv
	if fv.Kind() == reflect.Pointer {
		target = reflect.New(fv.Type().Elem()).Elem()
	}

	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "2.7" -> truncate to int
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		target.SetInt(int64(n))
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		target.SetFloat(n)
	case reflect.String:
		target.SetString(s)
	default:
		return fmt.Errorf("unsupported field type %s", target.Type())
	}

	if fv.Kind() == reflect.Pointer {
		fv.Set(target.Addr())
	}
	return nil
}
