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
	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/protomsg/internal/codec"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
)

// Message is an immutable message value.
//
// Messages are produced by [Builder.Build] or [MessageType.Unmarshal]. Once
// built, a message never changes, and may be read from any number of
// goroutines.
//
// Values returned by a Message's accessors may be retained freely: message
// values are themselves immutable, and byte slices are copied.
type Message struct {
	view
}

func newMessage(t *schema.Type, s *store.Store) *Message {
	return &Message{view{ty: t, st: s}}
}

// ToBuilder returns a new builder initialized with a copy of this message.
func (m *Message) ToBuilder() *Builder {
	return newBuilder(m.ty, m.st.Clone())
}

// Marshal returns the wire encoding of this message.
//
// Declared fields are written in field number order, then extensions in
// field number order, then unknown fields exactly as they were decoded.
func (m *Message) Marshal() []byte {
	return m.AppendMarshal(nil)
}

// AppendMarshal is like [Message.Marshal], but appends to b.
func (m *Message) AppendMarshal(b []byte) []byte {
	return codec.Append(b, m.ty, m.st)
}

// AppendDelimited appends the wire encoding of this message to b, prefixed
// with its length as a varint.
//
// This is the format read by [Builder.MergeDelimitedFrom].
func (m *Message) AppendDelimited(b []byte) []byte {
	body := m.Marshal()
	b = protowire.AppendVarint(b, uint64(len(body)))
	return append(b, body...)
}

// Equal returns whether two messages have the same type and the same
// fields, extensions, and unknown field data.
//
// As with [proto.Equal], NaN floats are never equal.
func (m *Message) Equal(that *Message) bool {
	if m == nil || that == nil {
		return m == that
	}
	return m.ty.ID == that.ty.ID && m.st.Equal(that.st)
}
