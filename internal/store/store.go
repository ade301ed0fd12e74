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

// Package store implements the per-message field store: declared field
// values, a sparse map of extension values, and unknown field bytes.
//
// Values are held in their canonical Go representation (see [Check]).
// Message values are *Store, and repeated values are []any.
//
// Store methods do not validate values; callers that accept values from
// users must call [Check] first. Stores perform no synchronization.
package store

import (
	"maps"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/xerrors"
)

// Store holds the field values of one message.
type Store struct {
	Fields     map[protowire.Number]any
	Extensions map[schema.Key]*Entry

	// Unknown holds wire data for fields that were neither declared nor
	// resolved as extensions, verbatim.
	Unknown []byte
}

// Entry is the value of one extension.
type Entry struct {
	Ext   *schema.Extension
	Value any
}

// Get returns the value of a singular field, or its default if unset.
//
// For unset message fields, returns nil.
func (s *Store) Get(f *schema.Field) any {
	if v, ok := s.Fields[f.Number]; ok {
		return v
	}
	return f.Default
}

// Has returns whether a field is set. Repeated fields are set when they are
// not empty.
func (s *Store) Has(f *schema.Field) bool {
	_, ok := s.Fields[f.Number]
	return ok
}

// Len returns the number of elements in a repeated field.
func (s *Store) Len(f *schema.Field) int {
	list, _ := s.Fields[f.Number].([]any)
	return len(list)
}

// Index returns the ith element of a repeated field.
func (s *Store) Index(f *schema.Field, i int) any {
	list, _ := s.Fields[f.Number].([]any)
	if i < 0 || i >= len(list) {
		panic(xerrors.Wrap(xerrors.IndexOutOfRange, "%v: index %d, length %d", f.Name, i, len(list)))
	}
	return list[i]
}

// Set sets a singular field, clearing any other member of its oneof.
//
// Setting a field without presence to its zero value clears it.
func (s *Store) Set(f *schema.Field, v any) {
	for _, n := range f.Oneof {
		delete(s.Fields, n)
	}

	if !f.Presence && !f.Repeated && IsZero(v) {
		delete(s.Fields, f.Number)
		return
	}

	if s.Fields == nil {
		s.Fields = make(map[protowire.Number]any)
	}
	s.Fields[f.Number] = v
}

// Append appends to a repeated field.
func (s *Store) Append(f *schema.Field, v any) {
	if s.Fields == nil {
		s.Fields = make(map[protowire.Number]any)
	}
	list, _ := s.Fields[f.Number].([]any)
	s.Fields[f.Number] = append(list, v)
}

// Clear clears a field.
func (s *Store) Clear(f *schema.Field) {
	delete(s.Fields, f.Number)
}

// Mutable returns the store of a singular message field, creating an empty
// one if it is unset.
func (s *Store) Mutable(f *schema.Field) *Store {
	if v, ok := s.Fields[f.Number].(*Store); ok {
		return v
	}
	v := new(Store)
	s.Set(f, v)
	return v
}

// AppendUnknown appends raw wire data to the unknown fields.
func (s *Store) AppendUnknown(raw []byte) {
	s.Unknown = append(s.Unknown, raw...)
}

// Reset clears everything in s.
func (s *Store) Reset() {
	*s = Store{}
}

// Sorted returns the extension entries of s ordered by field number.
func (s *Store) Sorted() []*Entry {
	return slices.SortedFunc(maps.Values(s.Extensions), func(a, b *Entry) int {
		return a.Ext.Key().Compare(b.Ext.Key())
	})
}

// Merge merges src into s, both being messages of type t.
//
// Singular scalars in src overwrite those in s, repeated fields are
// concatenated, and singular messages are merged recursively. Unknown fields
// are appended. Values taken from src are copied.
func (s *Store) Merge(t *schema.Type, src *Store) {
	for _, f := range t.Fields {
		v, ok := src.Fields[f.Number]
		if !ok {
			continue
		}
		switch {
		case f.Repeated:
			for _, e := range v.([]any) {
				s.Append(f, cloneValue(e))
			}
		case f.IsMessage():
			s.Mutable(f).Merge(f.Message, v.(*Store))
		default:
			s.Set(f, cloneValue(v))
		}
	}

	for _, e := range src.Sorted() {
		x := e.Ext
		switch {
		case x.Repeated:
			for _, v := range e.Value.([]any) {
				s.AddExtension(x, cloneValue(v))
			}
		case x.IsMessage():
			s.MutableExtension(x).Merge(x.Message, e.Value.(*Store))
		default:
			s.SetExtension(x, cloneValue(e.Value))
		}
	}

	s.AppendUnknown(src.Unknown)
}
