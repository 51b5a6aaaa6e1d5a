// File: internal/event/json.go
package event

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// Analytics payloads are traversed in document order: the first occurrence of
// a field wins. Go maps shuffle keys, so events are decoded into an ordered
// tree instead of map[string]interface{}.

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value interface{}
}

// Object is a JSON object with its members in document order.
type Object []Member

// Array is a JSON array.
type Array []interface{}

// Get returns the value for an exact key match at this level.
func (o Object) Get(key string) (interface{}, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode parses raw JSON into an order-preserving tree. Objects become
// Object, arrays become Array, scalars become string, float64, bool or nil.
func Decode(data []byte) (interface{}, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	v := readValue(iter)
	if iter.Error != nil {
		return nil, fmt.Errorf("decoding event JSON: %w", iter.Error)
	}
	return v, nil
}

// DecodeObject parses raw JSON and requires the top level to be an object.
func DecodeObject(data []byte) (Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, fmt.Errorf("event JSON must be an object, got %T", v)
	}
	return obj, nil
}

func readValue(iter *jsoniter.Iterator) interface{} {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		var obj Object
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			obj = append(obj, Member{Key: key, Value: readValue(it)})
			return true
		})
		if obj == nil {
			obj = Object{}
		}
		return obj
	case jsoniter.ArrayValue:
		var arr Array
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			arr = append(arr, readValue(it))
			return true
		})
		if arr == nil {
			arr = Array{}
		}
		return arr
	case jsoniter.StringValue:
		return iter.ReadString()
	case jsoniter.NumberValue:
		return iter.ReadFloat64()
	case jsoniter.BoolValue:
		return iter.ReadBool()
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil
	default:
		iter.ReportError("readValue", "unexpected JSON token")
		return nil
	}
}
