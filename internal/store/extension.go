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
	"slices"

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/xerrors"
)

// HasExtension returns whether a singular extension is set.
//
// Panics if x is repeated; use [Store.ExtensionCount] instead.
func (s *Store) HasExtension(x *schema.Extension) bool {
	if x.Repeated {
		panic(xerrors.Usage("HasExtension called on repeated extension %v; use ExtensionCount", x.Name))
	}
	_, ok := s.Extensions[x.Key()]
	return ok
}

// GetExtension returns the value of an extension, or its default if unset.
//
// For repeated extensions, returns a copy of the list of values. For unset
// message extensions, returns nil.
func (s *Store) GetExtension(x *schema.Extension) any {
	e := s.Extensions[x.Key()]
	switch {
	case e != nil && x.Repeated:
		return slices.Clone(e.Value.([]any))
	case e != nil:
		return e.Value
	case x.Repeated:
		return []any(nil)
	default:
		return x.Default
	}
}

// ExtensionAt returns the ith value of a repeated extension.
func (s *Store) ExtensionAt(x *schema.Extension, i int) any {
	if !x.Repeated {
		panic(xerrors.Usage("ExtensionAt called on singular extension %v", x.Name))
	}
	var list []any
	if e := s.Extensions[x.Key()]; e != nil {
		list = e.Value.([]any)
	}
	if i < 0 || i >= len(list) {
		panic(xerrors.Wrap(xerrors.IndexOutOfRange, "%v: index %d, count %d", x.Name, i, len(list)))
	}
	return list[i]
}

// ExtensionCount returns the number of values of a repeated extension.
//
// For singular extensions, returns 1 if set and 0 otherwise.
func (s *Store) ExtensionCount(x *schema.Extension) int {
	e := s.Extensions[x.Key()]
	switch {
	case e == nil:
		return 0
	case x.Repeated:
		return len(e.Value.([]any))
	default:
		return 1
	}
}

// SetExtension sets the value of an extension, overwriting any previous value.
//
// For repeated extensions, v must be a []any holding the complete new list.
func (s *Store) SetExtension(x *schema.Extension, v any) {
	if x.Repeated {
		list := v.([]any)
		if len(list) == 0 {
			s.ClearExtension(x)
			return
		}
		v = slices.Clone(list)
	}
	s.entry(x).Value = v
}

// AddExtension appends a value to a repeated extension.
//
// Panics if x is singular.
func (s *Store) AddExtension(x *schema.Extension, v any) {
	if !x.Repeated {
		panic(xerrors.Usage("AddExtension called on singular extension %v; use SetExtension", x.Name))
	}
	e := s.entry(x)
	list, _ := e.Value.([]any)
	e.Value = append(list, v)
}

// MutableExtension returns the store of a singular message extension,
// creating an empty one if it is unset.
func (s *Store) MutableExtension(x *schema.Extension) *Store {
	e := s.entry(x)
	if v, ok := e.Value.(*Store); ok {
		return v
	}
	v := new(Store)
	e.Value = v
	return v
}

// ClearExtension clears an extension.
func (s *Store) ClearExtension(x *schema.Extension) {
	delete(s.Extensions, x.Key())
}

// entry returns the entry for x, creating it if necessary.
func (s *Store) entry(x *schema.Extension) *Entry {
	if e := s.Extensions[x.Key()]; e != nil {
		return e
	}
	if s.Extensions == nil {
		s.Extensions = make(map[schema.Key]*Entry)
	}
	e := &Entry{Ext: x}
	s.Extensions[x.Key()] = e
	return e
}
