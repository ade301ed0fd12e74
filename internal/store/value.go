// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"bytes"
	"math"
	"slices"

	"github.com/tiendc/go-deepcopy"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/xerrors"
)

// Check validates that v is the canonical Go representation of a single
// value of f's kind:
//
//	bool                       bool
//	int32, sint32, sfixed32    int32
//	int64, sint64, sfixed64    int64
//	uint32, fixed32            uint32
//	uint64, fixed64            uint64
//	float                      float32
//	double                     float64
//	string                     string
//	bytes                      []byte
//	enum                       protoreflect.EnumNumber
//	message, group             *Store
func Check(f *schema.Field, v any) error {
	var ok bool
	switch f.Kind {
	case protoreflect.BoolKind:
		_, ok = v.(bool)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		_, ok = v.(int32)
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		_, ok = v.(int64)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		_, ok = v.(uint32)
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		_, ok = v.(uint64)
	case protoreflect.FloatKind:
		_, ok = v.(float32)
	case protoreflect.DoubleKind:
		_, ok = v.(float64)
	case protoreflect.StringKind:
		_, ok = v.(string)
	case protoreflect.BytesKind:
		_, ok = v.([]byte)
	case protoreflect.EnumKind:
		_, ok = v.(protoreflect.EnumNumber)
	case protoreflect.MessageKind, protoreflect.GroupKind:
		s, isStore := v.(*Store)
		ok = isStore && s != nil
	}

	if !ok {
		return xerrors.Usage("%v: cannot use %T as a %v value", f.Name, v, f.Kind)
	}
	return nil
}

// IsZero returns whether v is the zero value of its kind.
//
// Floats are compared bitwise, so -0.0 is not zero.
func IsZero(v any) bool {
	switch v := v.(type) {
	case bool:
		return !v
	case int32:
		return v == 0
	case int64:
		return v == 0
	case uint32:
		return v == 0
	case uint64:
		return v == 0
	case float32:
		return math.Float32bits(v) == 0
	case float64:
		return math.Float64bits(v) == 0
	case string:
		return v == ""
	case []byte:
		return len(v) == 0
	case protoreflect.EnumNumber:
		return v == 0
	default:
		return false
	}
}

// Clone returns a deep copy of s. The copy shares no mutable memory with s.
func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}

	out := &Store{Unknown: CloneBytes(s.Unknown)}
	if s.Fields != nil {
		out.Fields = make(map[protowire.Number]any, len(s.Fields))
		for n, v := range s.Fields {
			out.Fields[n] = cloneValue(v)
		}
	}
	if s.Extensions != nil {
		out.Extensions = make(map[schema.Key]*Entry, len(s.Extensions))
		for k, e := range s.Extensions {
			out.Extensions[k] = &Entry{Ext: e.Ext, Value: cloneValue(e.Value)}
		}
	}
	return out
}

// Equal returns whether s and t hold the same values, extensions, and unknown
// bytes. A nil store is equal to an empty one.
//
// Like proto.Equal, NaN is not equal to itself.
func (s *Store) Equal(t *Store) bool {
	if s == nil {
		s = new(Store)
	}
	if t == nil {
		t = new(Store)
	}

	if len(s.Fields) != len(t.Fields) || len(s.Extensions) != len(t.Extensions) {
		return false
	}
	for n, v := range s.Fields {
		w, ok := t.Fields[n]
		if !ok || !equalValue(v, w) {
			return false
		}
	}
	for k, e := range s.Extensions {
		f, ok := t.Extensions[k]
		if !ok || !equalValue(e.Value, f.Value) {
			return false
		}
	}
	return bytes.Equal(s.Unknown, t.Unknown)
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case *Store:
		return v.Clone()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []byte:
		return CloneBytes(v)
	default:
		return v
	}
}

// CloneBytes returns a copy of b. A nil slice stays nil.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	var out []byte
	if err := deepcopy.Copy(&out, &b); err != nil {
		// Byte slices are always copyable.
		panic(err)
	}
	return out
}

func equalValue(a, b any) bool {
	switch a := a.(type) {
	case *Store:
		b, ok := b.(*Store)
		return ok && a.Equal(b)
	case []any:
		b, ok := b.([]any)
		return ok && slices.EqualFunc(a, b, equalValue)
	case []byte:
		b, ok := b.([]byte)
		return ok && bytes.Equal(a, b)
	default:
		return a == b
	}
}
