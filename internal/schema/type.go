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

// Package schema contains the compiled form of message types and extension
// descriptors that the store and codec operate on.
//
// All fields in this package are exported because they are assembled and
// accessed by other internal packages. None of the types in this package
// should ever be exposed to users directly; the root package wraps them.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/dbg"
	"buf.build/go/protomsg/internal/xsync"
	"buf.build/go/protomsg/internal/xunsafe"
)

// maxDense is the largest field number that is looked up through
// [Type.Dense] rather than [Type.Sparse].
const maxDense = 64

// TypeID identifies a message type for the lifetime of the process.
//
// Every message with the same full name receives the same TypeID, no matter
// how many times its descriptor is compiled. The zero TypeID is invalid.
type TypeID uint32

var typeIDs xsync.Interner[protoreflect.FullName]

// IDOf returns the TypeID for the message with the given full name.
func IDOf(name protoreflect.FullName) TypeID {
	return TypeID(typeIDs.Intern(name))
}

// Type is a compiled message type.
type Type struct {
	_ xunsafe.NoCopy

	ID         TypeID
	Descriptor protoreflect.MessageDescriptor

	// Declared fields, sorted by number.
	Fields []*Field

	// Dense maps small field numbers to fields; larger numbers live in
	// Sparse.
	Dense  []*Field
	Sparse map[protowire.Number]*Field

	// Extension ranges declared by the message. Empty if the message is not
	// extendable.
	Ranges []Range

	// Extensions resolved by default when decoding this type. May be nil.
	Registry *Registry
}

// Range is a half-open range of extension field numbers.
type Range struct {
	Start, End protowire.Number
}

// ByNumber returns the declared field with the given number, or nil.
func (t *Type) ByNumber(n protowire.Number) *Field {
	if n >= 0 && int(n) < len(t.Dense) {
		return t.Dense[n]
	}
	return t.Sparse[n]
}

// Extendable returns whether this type declares any extension ranges.
func (t *Type) Extendable() bool {
	return len(t.Ranges) > 0
}

// InRange returns whether n falls inside one of this type's extension ranges.
func (t *Type) InRange(n protowire.Number) bool {
	for _, r := range t.Ranges {
		if r.Start <= n && n < r.End {
			return true
		}
	}
	return false
}

// Name returns the full name of this type.
func (t *Type) Name() protoreflect.FullName {
	return t.Descriptor.FullName()
}

// Format implements [fmt.Formatter].
func (t *Type) Format(s fmt.State, verb rune) {
	dbg.Dict(
		dbg.Fprintf("%p", t),
		"id", t.ID,
		"name", t.Name(),
		"fields", len(t.Fields),
		"ranges", len(t.Ranges),
	).Format(s, verb)
}

// Field is a compiled field: either a declared field of some [Type], or the
// field part of an [Extension].
type Field struct {
	Number   protowire.Number
	Name     protoreflect.FullName
	Kind     protoreflect.Kind
	Repeated bool
	Packed   bool

	// Whether the field tracks presence. Singular fields without presence
	// treat the zero value as unset.
	Presence bool

	// Other members of this field's oneof, if any.
	Oneof []protowire.Number

	// The default value, in its canonical Go representation. Nil for
	// repeated and message fields.
	Default any

	// The message type of message and group fields.
	Message *Type

	Descriptor protoreflect.FieldDescriptor
}

// IsMessage returns whether this field holds message values.
func (f *Field) IsMessage() bool {
	return f.Kind == protoreflect.MessageKind || f.Kind == protoreflect.GroupKind
}

// Format implements [fmt.Formatter].
func (f *Field) Format(s fmt.State, verb rune) {
	dbg.Dict(
		f.Name,
		"number", int32(f.Number),
		"kind", f.Kind,
		"repeated", f.Repeated,
	).Format(s, verb)
}

// Compiler converts message descriptors into [Type]s.
//
// Types compiled by the same Compiler share sub-types, which makes recursive
// messages possible.
type Compiler struct {
	Registry *Registry

	types map[protoreflect.MessageDescriptor]*Type
}

// Compile compiles md, and every message type reachable from it.
func (c *Compiler) Compile(md protoreflect.MessageDescriptor) *Type {
	if t, ok := c.types[md]; ok {
		return t
	}
	if c.types == nil {
		c.types = make(map[protoreflect.MessageDescriptor]*Type)
	}

	t := &Type{
		ID:         IDOf(md.FullName()),
		Descriptor: md,
		Registry:   c.Registry,
		Sparse:     make(map[protowire.Number]*Field),
	}
	// Register before recursing, so that recursive types terminate.
	c.types[md] = t

	fds := md.Fields()
	for i := range fds.Len() {
		t.Fields = append(t.Fields, c.field(fds.Get(i)))
	}
	slices.SortFunc(t.Fields, func(a, b *Field) int { return int(a.Number - b.Number) })

	var dense protowire.Number
	for _, f := range t.Fields {
		if f.Number <= maxDense {
			dense = max(dense, f.Number)
		}
	}
	t.Dense = make([]*Field, dense+1)
	for _, f := range t.Fields {
		if f.Number <= maxDense {
			t.Dense[f.Number] = f
		} else {
			t.Sparse[f.Number] = f
		}
	}

	ranges := md.ExtensionRanges()
	for i := range ranges.Len() {
		r := ranges.Get(i)
		t.Ranges = append(t.Ranges, Range{Start: r[0], End: r[1]})
	}

	return t
}

// field compiles a single field descriptor.
func (c *Compiler) field(fd protoreflect.FieldDescriptor) *Field {
	f := &Field{
		Number:     fd.Number(),
		Name:       fd.FullName(),
		Kind:       fd.Kind(),
		Repeated:   fd.Cardinality() == protoreflect.Repeated,
		Packed:     fd.IsPacked(),
		Presence:   fd.HasPresence(),
		Descriptor: fd,
	}

	if f.IsMessage() {
		f.Message = c.Compile(fd.Message())
	} else if !f.Repeated {
		f.Default = fd.Default().Interface()
	}

	if od := fd.ContainingOneof(); od != nil && !od.IsSynthetic() {
		members := od.Fields()
		for i := range members.Len() {
			if n := members.Get(i).Number(); n != f.Number {
				f.Oneof = append(f.Oneof, n)
			}
		}
	}

	return f
}

// Types returns every type compiled so far, ordered by full name.
func (c *Compiler) Types() []*Type {
	return slices.SortedFunc(maps.Values(c.types), func(a, b *Type) int {
		return strings.Compare(string(a.Name()), string(b.Name()))
	})
}
