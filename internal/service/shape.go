package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"horse.fit/guia/internal/textref"
)

// columnsSkippedOnUpdate are properties the generic update path never writes:
// identity, bookkeeping timestamps and the soft-delete pair.
var columnsSkippedOnUpdate = map[string]struct{}{
	"id":        {},
	"createdAt": {},
	"updatedAt": {},
	"deletedAt": {},
	"isDeleted": {},
}

// entityToMap renders an entity as a JSON-property map. Numbers are kept as
// json.Number so 63-bit reference IDs survive the round trip.
func entityToMap(entity any) (map[string]any, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshal entity: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode entity map: %w", err)
	}
	return out, nil
}

// applyPayload overlays payload properties onto the entity. Properties with
// no matching field (the plain-string text fields among them) are dropped.
func applyPayload(entity any, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(raw, entity); err != nil {
		return fmt.Errorf("apply payload: %w", err)
	}
	return nil
}

// entityToColumns flattens an entity into a column-value map for a row-level
// update, skipping identity and bookkeeping properties.
func entityToColumns(entity any) (map[string]any, error) {
	properties, err := entityToMap(entity)
	if err != nil {
		return nil, err
	}
	columns := make(map[string]any, len(properties))
	for property, value := range properties {
		if _, skip := columnsSkippedOnUpdate[property]; skip {
			continue
		}
		columns[textref.StorageName(property)] = plainValue(value)
	}
	return columns, nil
}

// plainValue converts json.Number back into a driver-friendly scalar.
func plainValue(value any) any {
	number, ok := value.(json.Number)
	if !ok {
		return value
	}
	if i, err := number.Int64(); err == nil {
		return i
	}
	if f, err := number.Float64(); err == nil {
		return f
	}
	return number.String()
}

// positiveInt extracts a positive integer from a payload value: the caller
// already resolved the reference ID.
func positiveInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int32:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 && v == math.Trunc(v) {
			return int64(v), true
		}
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil && i > 0 {
			return i, true
		}
	}
	return 0, false
}

// stringValue extracts a non-empty plain string from a payload value.
func stringValue(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// entityID reads the int64 primary key field.
func entityID(entity any) int64 {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0
	}
	field := v.FieldByName("ID")
	if !field.IsValid() || !field.CanInt() {
		return 0
	}
	return field.Int()
}
