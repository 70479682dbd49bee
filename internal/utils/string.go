package utils

import (
	"reflect"
	"strings"
)

// TrimAllStringFields returns a copy of input with every exported string field trimmed.
// It walks pointers, structs, slices and maps; other kinds are returned as is.
func TrimAllStringFields[T any](input T) T {
	value := reflect.ValueOf(input)
	if !value.IsValid() {
		return input
	}
	return trimValue(value).Interface().(T)
}

func trimValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(trimValue(v.Elem()))
		return newPtr

	case reflect.Struct:
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			// Skip unexported fields
			if !v.Type().Field(i).IsExported() {
				continue
			}
			newStruct.Field(i).Set(trimValue(v.Field(i)))
		}
		return newStruct

	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(trimValue(v.Index(i)))
		}
		return newSlice

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		newMap := reflect.MakeMap(v.Type())
		iter := v.MapRange()
		for iter.Next() {
			newMap.SetMapIndex(trimValue(iter.Key()), trimValue(iter.Value()))
		}
		return newMap

	case reflect.String:
		// Convert keeps named string types assignable to their field.
		return reflect.ValueOf(strings.TrimSpace(v.String())).Convert(v.Type())
	}

	return v
}

// OrPlaceholder returns "--" for an empty value, the way the summary cards show missing readings.
func OrPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return "--"
	}
	return value
}
