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
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
	"buf.build/go/protomsg/internal/xerrors"
)

// exportValue converts a stored value into its public representation.
//
// Bytes are always copied. Nested stores are copied only if clone is set,
// which is the case for values read out of a [Builder].
func exportValue(f *schema.Field, v any, clone bool) any {
	switch v := v.(type) {
	case *store.Store:
		if clone {
			v = v.Clone()
		}
		return newMessage(f.Message, v)
	case []byte:
		return store.CloneBytes(v)
	case []any:
		if v == nil {
			return []any(nil)
		}
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = exportValue(f, e, clone)
		}
		return out
	default:
		return v
	}
}

// importValue validates a single public value for f and converts it into
// its stored representation. Panics on a value of the wrong type.
func importValue(f *schema.Field, v any) any {
	if m, ok := v.(*Message); ok && f.IsMessage() {
		switch {
		case m == nil:
			panic(xerrors.Usage("%v: cannot use nil *Message", f.Name))
		case m.ty.ID != f.Message.ID:
			panic(xerrors.Usage("%v: cannot use %v as %v", f.Name, m.ty.Name(), f.Message.Name()))
		}
		return m.st.Clone()
	}

	if err := store.Check(f, v); err != nil {
		panic(err)
	}
	if b, ok := v.([]byte); ok {
		return store.CloneBytes(b)
	}
	return v
}

// importList is like importValue, but for a whole repeated field.
func importList(f *schema.Field, v any) []any {
	list, ok := v.([]any)
	if !ok {
		panic(xerrors.Usage("%v: cannot use %T as a repeated value; use []any", f.Name, v))
	}
	out := make([]any, len(list))
	for i, e := range list {
		out[i] = importValue(f, e)
	}
	return out
}
