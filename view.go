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

package protomsg

import (
	"fmt"
	"iter"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/dbg"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
)

// view is the read-only surface shared by [Message] and [Builder].
type view struct {
	ty *schema.Type
	st *store.Store

	// Set for builders, whose nested values must be copied on the way out.
	mutable bool
}

// Type returns this message's type.
func (v *view) Type() *MessageType {
	return wrapType(v.ty)
}

// Has returns whether the field with the given number is set.
//
// Repeated fields are set when they are not empty. Fields without presence
// are set when they are not the zero value.
func (v *view) Has(n protoreflect.FieldNumber) bool {
	return v.st.Has(field(v.ty, n))
}

// Get returns the value of the field with the given number, or its default
// if the field is not set.
//
// Repeated fields are returned as a new []any. Unset message fields return
// nil.
func (v *view) Get(n protoreflect.FieldNumber) any {
	f := field(v.ty, n)
	if f.Repeated {
		list, _ := v.st.Get(f).([]any)
		return exportValue(f, list, v.mutable)
	}
	return exportValue(f, v.st.Get(f), v.mutable)
}

// Len returns the number of elements in a repeated field.
func (v *view) Len(n protoreflect.FieldNumber) int {
	return v.st.Len(field(v.ty, n))
}

// Index returns the ith element of a repeated field.
//
// Panics with [ErrIndexOutOfRange] if i is out of bounds.
func (v *view) Index(n protoreflect.FieldNumber, i int) any {
	f := field(v.ty, n)
	return exportValue(f, v.st.Index(f, i), v.mutable)
}

// Unknown returns a copy of the wire data for fields that were neither
// declared nor resolved as extensions.
func (v *view) Unknown() []byte {
	return store.CloneBytes(v.st.Unknown)
}

// HasExtension returns whether a singular extension is set.
//
// Panics with [ErrInvalidUsage] if x is repeated; use
// [Message.ExtensionCount] for those.
func (v *view) HasExtension(x *Extension) bool {
	checkOwner(v.ty, x)
	return v.st.HasExtension(&x.impl)
}

// GetExtension returns the value of an extension, or its default if it is
// not set.
//
// Repeated extensions are returned as a new []any. Unset message extensions
// return nil.
func (v *view) GetExtension(x *Extension) any {
	checkOwner(v.ty, x)
	return exportValue(&x.impl.Field, v.st.GetExtension(&x.impl), v.mutable)
}

// GetExtensionAt returns the ith value of a repeated extension.
//
// Panics with [ErrInvalidUsage] if x is singular, and with
// [ErrIndexOutOfRange] if i is out of bounds.
func (v *view) GetExtensionAt(x *Extension, i int) any {
	checkOwner(v.ty, x)
	return exportValue(&x.impl.Field, v.st.ExtensionAt(&x.impl, i), v.mutable)
}

// ExtensionCount returns the number of values of a repeated extension.
// For a singular extension, returns 1 if it is set and 0 otherwise.
func (v *view) ExtensionCount(x *Extension) int {
	checkOwner(v.ty, x)
	return v.st.ExtensionCount(&x.impl)
}

// Fields yields every set declared field and its value, in field number
// order.
func (v *view) Fields() iter.Seq2[protoreflect.FieldDescriptor, any] {
	return func(yield func(protoreflect.FieldDescriptor, any) bool) {
		for _, f := range v.ty.Fields {
			value, ok := v.st.Fields[f.Number]
			if ok && !yield(f.Descriptor, exportValue(f, value, v.mutable)) {
				return
			}
		}
	}
}

// Extensions yields every set extension and its value, in field number
// order.
func (v *view) Extensions() iter.Seq2[*Extension, any] {
	return func(yield func(*Extension, any) bool) {
		for _, e := range v.st.Sorted() {
			if !yield(wrapExtension(e.Ext), exportValue(&e.Ext.Field, e.Value, v.mutable)) {
				return
			}
		}
	}
}

// Format implements [fmt.Formatter].
func (v *view) Format(s fmt.State, verb rune) {
	var kv []any
	for fd, value := range v.Fields() {
		kv = append(kv, fd.Name(), format(value))
	}
	for x, value := range v.Extensions() {
		kv = append(kv, dbg.Fprintf("[%v]", x.FullName()), format(value))
	}
	if len(v.st.Unknown) > 0 {
		kv = append(kv, "unknown", dbg.Fprintf("%x", v.st.Unknown))
	}
	dbg.Dict(v.ty.Name(), kv...).Format(s, verb)
}

func format(v any) any {
	switch v := v.(type) {
	case string:
		return dbg.Fprintf("%q", v)
	case []byte:
		return dbg.Fprintf("%q", v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = format(e)
		}
		return dbg.List(out)
	default:
		return v
	}
}
