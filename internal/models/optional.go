package models

import (
	"encoding/json"
	"strings"
)

// Optional distinguishes a field that was omitted from a request body from
// one that was sent as null. Set is true whenever the key was present.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

func Null[T any]() Optional[T] { return Optional[T]{Set: true, Null: true} }

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if strings.TrimSpace(string(data)) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// ApplyString updates dst from o: omitted leaves it alone, null or an empty
// string clears it.
func ApplyString(o Optional[string], dst **string) {
	if !o.Set {
		return
	}
	if o.Null || strings.TrimSpace(o.Value) == "" {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}
