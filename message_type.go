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

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/codec"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
	"buf.build/go/protomsg/internal/xerrors"
	"buf.build/go/protomsg/internal/xunsafe"
)

// TypeID identifies a message type within a process.
//
// Every type compiled from a message with the same full name has the same
// TypeID. [ExtensionRegistry] keys extensions by the TypeID of the message
// they extend.
type TypeID = schema.TypeID

// TypeIDOf returns the TypeID of the message type with the given full name.
func TypeIDOf(name protoreflect.FullName) TypeID {
	return schema.IDOf(name)
}

// MessageType is a compiled message type.
//
// To obtain a [MessageType], use any of the Compile* functions.
type MessageType struct {
	impl schema.Type
}

// Descriptor returns the message descriptor.
func (t *MessageType) Descriptor() protoreflect.MessageDescriptor {
	if t == nil {
		return nil
	}
	return t.impl.Descriptor
}

// ID returns this type's [TypeID].
func (t *MessageType) ID() TypeID {
	return t.impl.ID
}

// Registry returns the extensions bundled with this type at compile time.
//
// The returned registry is frozen. Returns [EmptyRegistry] if no extensions
// were bundled.
func (t *MessageType) Registry() *ExtensionRegistry {
	if t.impl.Registry == nil {
		return EmptyRegistry()
	}
	return xunsafe.Cast[ExtensionRegistry](t.impl.Registry)
}

// NewBuilder returns a builder for an empty message of this type.
func (t *MessageType) NewBuilder() *Builder {
	return newBuilder(&t.impl, new(store.Store))
}

// Unmarshal decodes a message of this type.
//
// This is shorthand for [MessageType.NewBuilder], [Builder.Merge] and
// [Builder.Build], except that no copy is needed.
func (t *MessageType) Unmarshal(data []byte, options ...UnmarshalOption) (*Message, error) {
	s := new(store.Store)
	if err := codec.Merge(&t.impl, s, data, t.unmarshalOptions(options)); err != nil {
		return nil, err
	}
	return newMessage(&t.impl, s), nil
}

// Format implements [fmt.Formatter].
func (t *MessageType) Format(f fmt.State, verb rune) {
	if f.Flag('#') {
		t.impl.Format(f, verb)
	} else {
		fmt.Fprint(f, t.Descriptor().FullName())
	}
}

func (t *MessageType) unmarshalOptions(options []UnmarshalOption) codec.Options {
	opts := codec.Options{Registry: t.impl.Registry}
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}
	return opts
}

// wrapType wraps an internal Type pointer.
func wrapType(t *schema.Type) *MessageType {
	return xunsafe.Cast[MessageType](t)
}

// field looks up a declared field, panicking if there is none.
func field(t *schema.Type, n protoreflect.FieldNumber) *schema.Field {
	f := t.ByNumber(n)
	if f == nil {
		panic(xerrors.Usage("%v has no field numbered %d", t.Name(), n))
	}
	return f
}
