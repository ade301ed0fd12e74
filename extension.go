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

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/xerrors"
	"buf.build/go/protomsg/internal/xunsafe"
)

// Extension describes a field attached to a message type from outside its
// schema: its owner, number, value kind, and cardinality.
//
// Extensions are immutable, and may be shared freely.
type Extension struct {
	impl schema.Extension
}

// NewExtension compiles an extension descriptor.
//
// Fails with [ErrInvalidUsage] if xd is not an extension, or if its number
// is outside the extension ranges of the message it extends.
//
// The message type of a message-typed extension has no default registry;
// see [Extension.MessageType].
func NewExtension(xd protoreflect.ExtensionDescriptor) (*Extension, error) {
	x, err := new(schema.Compiler).Extension(xd)
	if err != nil {
		return nil, err
	}
	return wrapExtension(x), nil
}

// Descriptor returns the extension's descriptor.
func (x *Extension) Descriptor() protoreflect.ExtensionDescriptor {
	return x.impl.Descriptor
}

// FullName returns the extension's fully-qualified name.
func (x *Extension) FullName() protoreflect.FullName {
	return x.impl.Name
}

// Owner returns the [TypeID] of the message this extension extends.
func (x *Extension) Owner() TypeID {
	return x.impl.Owner
}

// Number returns the extension's field number.
func (x *Extension) Number() protoreflect.FieldNumber {
	return x.impl.Number
}

// Kind returns the kind of the extension's values.
func (x *Extension) Kind() protoreflect.Kind {
	return x.impl.Kind
}

// IsRepeated returns whether the extension holds a list of values.
func (x *Extension) IsRepeated() bool {
	return x.impl.Repeated
}

// IsPacked returns whether a repeated extension is encoded packed.
func (x *Extension) IsPacked() bool {
	return x.impl.Packed
}

// Default returns the value of an unset singular scalar extension.
//
// Returns nil for repeated and message extensions.
func (x *Extension) Default() any {
	return exportValue(&x.impl.Field, x.impl.Default, true)
}

// MessageType returns the type of a message or group extension's values,
// or nil.
//
// For extensions loaded by [NewRegistryFromTypes] or [NewRegistryFromFiles],
// the returned type decodes with that registry by default. For extensions
// made with [NewExtension], it has no default registry, so decoding it
// without [WithRegistry] keeps its extensions as unknown fields.
func (x *Extension) MessageType() *MessageType {
	if x.impl.Message == nil {
		return nil
	}
	return wrapType(x.impl.Message)
}

// Format implements [fmt.Formatter].
func (x *Extension) Format(s fmt.State, verb rune) {
	x.impl.Format(s, verb)
}

// wrapExtension wraps an internal Extension pointer.
func wrapExtension(x *schema.Extension) *Extension {
	return xunsafe.Cast[Extension](x)
}

// checkOwner panics if x does not extend t.
func checkOwner(t *schema.Type, x *Extension) {
	if x == nil {
		panic(xerrors.Usage("nil extension"))
	}
	if x.impl.Owner != t.ID {
		panic(xerrors.Usage("%v extends %v, not %v", x.impl.Name, x.impl.OwnerName, t.Name()))
	}
}
