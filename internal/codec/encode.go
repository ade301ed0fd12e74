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

package codec

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/debug"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
	"buf.build/go/protomsg/internal/sync2"
)

var packBuffers = sync2.Pool[[]byte]{
	Reset: func(b *[]byte) bool {
		*b = (*b)[:0]
		return cap(*b) <= 64*1024
	},
}

// Append appends the wire encoding of s, a message of type t, to b.
//
// Declared fields are written in field number order, followed by extensions
// in field number order, followed by unknown fields exactly as they were
// decoded.
func Append(b []byte, t *schema.Type, s *store.Store) []byte {
	for _, f := range t.Fields {
		if v, ok := s.Fields[f.Number]; ok {
			b = appendField(b, f, v)
		}
	}
	for _, e := range s.Sorted() {
		b = appendField(b, &e.Ext.Field, e.Value)
	}
	return append(b, s.Unknown...)
}

func appendField(b []byte, f *schema.Field, v any) []byte {
	k := lookup(f.Kind)
	debug.Assert(k != nil, "%v: no codec for kind %v", f.Name, f.Kind)
	if !f.Repeated {
		return appendValue(b, f, k, v)
	}

	list := v.([]any)
	if !f.Packed || !k.packable || len(list) == 0 {
		for _, e := range list {
			b = appendValue(b, f, k, e)
		}
		return b
	}

	buf, drop := packBuffers.Get()
	defer drop()
	for _, e := range list {
		*buf = k.encode(*buf, e)
	}
	b = protowire.AppendTag(b, f.Number, protowire.BytesType)
	return protowire.AppendBytes(b, *buf)
}

func appendValue(b []byte, f *schema.Field, k *kindInfo, v any) []byte {
	switch f.Kind {
	case protoreflect.GroupKind:
		b = protowire.AppendTag(b, f.Number, protowire.StartGroupType)
		b = Append(b, f.Message, v.(*store.Store))
		return protowire.AppendTag(b, f.Number, protowire.EndGroupType)
	case protoreflect.MessageKind:
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		return protowire.AppendBytes(b, Append(nil, f.Message, v.(*store.Store)))
	default:
		b = protowire.AppendTag(b, f.Number, k.wire)
		return k.encode(b, v)
	}
}
