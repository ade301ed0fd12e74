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
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/codec"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
	"buf.build/go/protomsg/internal/sync2"
	"buf.build/go/protomsg/internal/xerrors"
)

var buffers = sync2.Pool[bytes.Buffer]{
	Reset: func(b *bytes.Buffer) bool {
		b.Reset()
		// Don't pin very large buffers.
		return b.Cap() <= 1<<20
	},
}

// Builder accumulates field values for a message.
//
// A Builder must not be used from more than one goroutine at a time.
type Builder struct {
	view
}

// DelimitedReader is the input to [Builder.MergeDelimitedFrom].
//
// Reading the length prefix a byte at a time ensures that no data past the
// end of the message is consumed.
type DelimitedReader interface {
	io.Reader
	io.ByteReader
}

func newBuilder(t *schema.Type, s *store.Store) *Builder {
	return &Builder{view{ty: t, st: s, mutable: true}}
}

// Build returns an immutable copy of this builder's current state.
//
// The builder can continue to be used; later changes do not affect the
// returned message.
func (b *Builder) Build() *Message {
	return newMessage(b.ty, b.st.Clone())
}

// Reset clears every field, extension, and unknown field.
func (b *Builder) Reset() {
	b.st.Reset()
}

// Set sets the field with the given number.
//
// For repeated fields, v must be a []any holding the new list of values.
// For message fields, v must be a *Message of the field's type, which is
// copied. Panics with [ErrInvalidUsage] if v has the wrong type.
//
// Setting a member of a oneof clears the other members.
func (b *Builder) Set(n protoreflect.FieldNumber, v any) {
	f := field(b.ty, n)
	if f.Repeated {
		list := importList(f, v)
		b.st.Clear(f)
		for _, e := range list {
			b.st.Append(f, e)
		}
		return
	}
	b.st.Set(f, importValue(f, v))
}

// Add appends a value to a repeated field.
//
// Panics with [ErrInvalidUsage] if the field is not repeated.
func (b *Builder) Add(n protoreflect.FieldNumber, v any) {
	f := field(b.ty, n)
	if !f.Repeated {
		panic(xerrors.Usage("Add called on singular field %v; use Set", f.Name))
	}
	b.st.Append(f, importValue(f, v))
}

// Clear clears the field with the given number.
func (b *Builder) Clear(n protoreflect.FieldNumber) {
	b.st.Clear(field(b.ty, n))
}

// Mutable returns a builder for the value of a singular message field,
// setting it to an empty message first if it is unset.
//
// The returned builder writes through to b.
func (b *Builder) Mutable(n protoreflect.FieldNumber) *Builder {
	f := field(b.ty, n)
	if f.Repeated || !f.IsMessage() {
		panic(xerrors.Usage("Mutable called on %v, which is not a singular message field", f.Name))
	}
	return newBuilder(f.Message, b.st.Mutable(f))
}

// SetExtension sets the value of an extension, replacing any previous
// value.
//
// For repeated extensions, v must be a []any holding the new list of
// values. Panics with [ErrInvalidUsage] if x does not extend this message's
// type, or if v has the wrong type.
func (b *Builder) SetExtension(x *Extension, v any) {
	checkOwner(b.ty, x)
	if x.impl.Repeated {
		b.st.SetExtension(&x.impl, importList(&x.impl.Field, v))
		return
	}
	b.st.SetExtension(&x.impl, importValue(&x.impl.Field, v))
}

// AddExtension appends a value to a repeated extension.
//
// Panics with [ErrInvalidUsage] if x is singular.
func (b *Builder) AddExtension(x *Extension, v any) {
	checkOwner(b.ty, x)
	if !x.impl.Repeated {
		panic(xerrors.Usage("AddExtension called on singular extension %v; use SetExtension", x.impl.Name))
	}
	b.st.AddExtension(&x.impl, importValue(&x.impl.Field, v))
}

// MutableExtension returns a builder for the value of a singular message
// extension, setting it to an empty message first if it is unset.
//
// The returned builder writes through to b.
func (b *Builder) MutableExtension(x *Extension) *Builder {
	checkOwner(b.ty, x)
	if x.impl.Repeated || !x.impl.IsMessage() {
		panic(xerrors.Usage("MutableExtension called on %v, which is not a singular message extension", x.impl.Name))
	}
	return newBuilder(x.impl.Message, b.st.MutableExtension(&x.impl))
}

// ClearExtension clears an extension.
func (b *Builder) ClearExtension(x *Extension) {
	checkOwner(b.ty, x)
	b.st.ClearExtension(&x.impl)
}

// Merge decodes data and merges it into this builder.
//
// Singular fields present in data overwrite the builder's values, repeated
// fields are appended to, and singular message fields are merged
// recursively. Extensions are resolved with the registry given by
// [WithRegistry], or else with the type's default registry.
//
// On failure, the builder keeps every field decoded before the error.
func (b *Builder) Merge(data []byte, options ...UnmarshalOption) error {
	return codec.Merge(b.ty, b.st, data, b.Type().unmarshalOptions(options))
}

// MergeFrom reads r to EOF and merges its contents into this builder, as
// with [Builder.Merge].
func (b *Builder) MergeFrom(r io.Reader, options ...UnmarshalOption) error {
	buf, drop := buffers.Get()
	defer drop()

	if _, err := buf.ReadFrom(r); err != nil {
		return err
	}
	return b.Merge(buf.Bytes(), options...)
}

// MergeDelimitedFrom reads a single varint length-prefixed message from r
// and merges it into this builder, as with [Builder.Merge].
//
// Returns [io.EOF] if r is already at EOF. A truncated prefix or message is
// reported as a [*ParseError].
func (b *Builder) MergeDelimitedFrom(r DelimitedReader, options ...UnmarshalOption) error {
	n, err := readPrefix(r)
	if err != nil {
		return err
	}

	buf, drop := buffers.Get()
	defer drop()

	read, err := io.CopyN(buf, r, int64(n))
	if err == io.EOF {
		return codec.NewParseError(codec.ErrorTruncated, int(read))
	} else if err != nil {
		return err
	}
	return b.Merge(buf.Bytes(), options...)
}

// readPrefix reads a varint length prefix one byte at a time, so that
// nothing past the prefix is consumed.
//
// Reader errors other than EOF are returned unchanged.
func readPrefix(r io.ByteReader) (uint64, error) {
	var prefix [binary.MaxVarintLen64]byte
	for i := range prefix {
		c, err := r.ReadByte()
		switch {
		case err == io.EOF && i == 0:
			return 0, io.EOF
		case err == io.EOF:
			return 0, codec.NewParseError(codec.ErrorTruncated, i)
		case err != nil:
			return 0, err
		}

		prefix[i] = c
		if c < 0x80 {
			n, m := protowire.ConsumeVarint(prefix[:i+1])
			if m < 0 || n > math.MaxInt32 {
				return 0, codec.NewParseError(codec.ErrorOverflow, 0)
			}
			return n, nil
		}
	}
	return 0, codec.NewParseError(codec.ErrorOverflow, 0)
}

// MergeMessage merges a message of the same type into this builder, with
// the same rules as [Builder.Merge].
func (b *Builder) MergeMessage(m *Message) {
	if m == nil {
		panic(xerrors.Usage("cannot merge nil *Message into %v", b.ty.Name()))
	}
	if m.ty.ID != b.ty.ID {
		panic(xerrors.Usage("cannot merge %v into %v", m.ty.Name(), b.ty.Name()))
	}
	b.st.Merge(b.ty, m.st)
}
