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

// Package protomsg is a dynamic Protobuf message runtime built around an
// immutable [Message] and a mutable [Builder].
//
// Message types are compiled at runtime from descriptors, using
// [CompileMessageDescriptor] or [CompileFileDescriptorSet]. A [MessageType]
// creates [Builder]s; a Builder accumulates field values and produces
// immutable Messages via [Builder.Build], which copies the builder's state.
// The builder may keep being used afterwards without affecting any message
// it already built. [Message.ToBuilder] goes the other way.
//
// # Extensions
//
// An [Extension] attaches a typed field to a message type that declares an
// extension range, without modifying the message's schema. Extensions are
// read with [Message.GetExtension] and friends, and written with
// [Builder.SetExtension] and [Builder.AddExtension].
//
// When decoding, extension fields are only recognized if they are present in
// the [ExtensionRegistry] passed with [WithRegistry] (or bundled into the
// type at compile time). Any other field that the message type does not
// declare is kept verbatim as unknown field data, and is written back
// unchanged by [Message.Marshal].
//
// # Values
//
// Field and extension values use the following Go types:
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
//	message, group             *Message
//
// Repeated fields hold a []any of the above. Map fields are treated as
// repeated fields of their entry message.
//
// # Concurrency
//
// A [Message] may be read from any number of goroutines. A [Builder] must
// only be used by one goroutine at a time. An [ExtensionRegistry] may be
// read concurrently once it is fully populated; call
// [ExtensionRegistry.Freeze] to enforce that.
//
// # Errors
//
// Decoding errors are returned as [*ParseError], which matches
// [ErrMalformedInput]. Misuse of the API, such as calling
// [Message.HasExtension] on a repeated extension or setting a value of the
// wrong type, panics with an error matching [ErrInvalidUsage] or
// [ErrIndexOutOfRange].
package protomsg
