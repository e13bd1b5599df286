// Package textref lets entity types declare which of their fields hold
// references into the translation store, and resolves those declarations to
// field metadata at runtime. The registry is populated once at load time and
// read thereafter.
package textref

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// FieldDescriptor describes one text-reference field of an entity type.
type FieldDescriptor struct {
	// PropertyName is the entity-side JSON property, for example "nameTextRefId".
	PropertyName string
	// DTOName is the payload/response property the reference resolves to,
	// for example "name".
	DTOName string
	// StorageName is the snake_case column backing the property.
	StorageName string
	// Optional reports whether the backing column is nullable.
	Optional bool

	fieldIndex []int
}

var (
	registryMu sync.RWMutex
	registry   = make(map[reflect.Type][]FieldDescriptor)
)

// Register declares the text-reference properties of a model type. It is meant
// to run once per type at load time; registering the same property twice
// duplicates its descriptor, which is wasteful but harmless. The model must be
// a struct or pointer to struct, and every property must resolve to one of its
// fields.
func Register(model any, properties ...string) error {
	typ, err := structTypeOf(model)
	if err != nil {
		return err
	}

	descriptors := make([]FieldDescriptor, 0, len(properties))
	for _, property := range properties {
		field, ok := fieldByProperty(typ, property)
		if !ok {
			return fmt.Errorf("type %s has no field for property %q", typ.Name(), property)
		}
		descriptors = append(descriptors, FieldDescriptor{
			PropertyName: property,
			DTOName:      DTOFieldName(property),
			StorageName:  StorageName(property),
			Optional:     field.Type.Kind() == reflect.Pointer,
			fieldIndex:   field.Index,
		})
	}

	registryMu.Lock()
	registry[typ] = append(registry[typ], descriptors...)
	registryMu.Unlock()
	return nil
}

// MustRegister is Register for load-time declarations.
func MustRegister(model any, properties ...string) {
	if err := Register(model, properties...); err != nil {
		panic(err)
	}
}

// FieldsOf returns the registered descriptors for the model's type in
// registration order. The returned slice is a copy.
func FieldsOf(model any) []FieldDescriptor {
	typ, err := structTypeOf(model)
	if err != nil {
		return nil
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	descriptors := registry[typ]
	if len(descriptors) == 0 {
		return nil
	}
	out := make([]FieldDescriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// RefID reads the reference ID held by the descriptor's field. The second
// return value is false when the field is a nil pointer or not positive.
func RefID(entity any, fd FieldDescriptor) (int64, bool) {
	v := reflect.ValueOf(entity)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return 0, false
	}

	field := v.FieldByIndex(fd.fieldIndex)
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			return 0, false
		}
		field = field.Elem()
	}
	if !field.CanInt() {
		return 0, false
	}
	id := field.Int()
	if id <= 0 {
		return 0, false
	}
	return id, true
}

// SetRefID writes a reference ID into the descriptor's field. The entity must
// be a pointer to struct.
func SetRefID(entity any, fd FieldDescriptor, id int64) error {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("entity must be a non-nil pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("entity must point to a struct")
	}

	field := v.FieldByIndex(fd.fieldIndex)
	if field.Kind() == reflect.Pointer {
		value := reflect.New(field.Type().Elem())
		value.Elem().SetInt(id)
		field.Set(value)
		return nil
	}
	if !field.CanInt() || !field.CanSet() {
		return fmt.Errorf("property %q is not a settable integer field", fd.PropertyName)
	}
	field.SetInt(id)
	return nil
}

func structTypeOf(model any) (reflect.Type, error) {
	if model == nil {
		return nil, fmt.Errorf("model is nil")
	}
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", typ.Kind())
	}
	return typ, nil
}

// fieldByProperty matches a JSON property against a struct field, preferring
// an exact json tag match and falling back to a case-insensitive name match.
func fieldByProperty(typ reflect.Type, property string) (reflect.StructField, bool) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if comma := strings.IndexByte(tag, ','); comma >= 0 {
			tag = tag[:comma]
		}
		if tag == property {
			return field, true
		}
	}
	lowered := strings.ToLower(property)
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if strings.ToLower(field.Name) == lowered {
			return field, true
		}
	}
	return reflect.StructField{}, false
}
