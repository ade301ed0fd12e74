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

// Package prototest contains helpers for checking protomsg messages against
// protobuf-go.
package prototest

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/protomsg"
	"buf.build/go/protomsg/internal/dbg"
)

// Equal validates that a protobuf-go message and a protomsg message have the
// same observable value.
func Equal(t testing.TB, expect proto.Message, got *protomsg.Message) {
	t.Helper()
	e := &equal{TB: t}

	panicked := true
	defer func() {
		if panicked {
			t.Errorf("panicked at %s", e.formatPath())
		}
	}()

	e.message(expect.ProtoReflect(), got)
	panicked = false
}

type equal struct {
	testing.TB
	path []any
}

func (e *equal) message(a protoreflect.Message, b *protomsg.Message) {
	e.Helper()

	if a.Descriptor().FullName() != b.Type().Descriptor().FullName() {
		e.fail("expected %v, got %v", a.Descriptor().FullName(), b.Type())
		return
	}

	// Can't just compare for equality, since go protobuf actually re-encodes
	// each unknown field minimally! This is not actually necessary to match
	// the contract of unknown fields.
	transcode := func(b []byte) []byte {
		empty := new(emptypb.Empty)
		_ = proto.Unmarshal(b, empty)
		return empty.ProtoReflect().GetUnknown()
	}

	if !bytes.Equal(transcode(a.GetUnknown()), transcode(b.Unknown())) {
		e.fail("unequal unknown fields: want `%x`, got `%x`", a.GetUnknown(), b.Unknown())
	}

	fds := a.Descriptor().Fields()
	for i := range fds.Len() {
		fd := fds.Get(i)
		e.push(fd.Name(), func() {
			e.Helper()
			e.field(fd, a, b.Has(fd.Number()), b.Get(fd.Number()))
		})
	}

	// Extensions: everything set on a must be set on b, and vice versa.
	got := make(map[protoreflect.FieldNumber]any)
	names := make(map[protoreflect.FieldNumber]protoreflect.FullName)
	for x, v := range b.Extensions() {
		got[x.Number()] = v
		names[x.Number()] = x.FullName()
	}
	a.Range(func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		if !fd.IsExtension() {
			return true
		}
		e.push(dbg.Fprintf("[%v]", fd.FullName()), func() {
			e.Helper()
			v, ok := got[fd.Number()]
			if !ok {
				e.fail("extension missing")
				return
			}
			if names[fd.Number()] != fd.FullName() {
				e.fail("expected %v, got %v", fd.FullName(), names[fd.Number()])
			}
			delete(got, fd.Number())
			e.field(fd, a, true, v)
		})
		return true
	})
	for n := range got {
		e.fail("unexpected extension %v", names[n])
	}
}

func (e *equal) field(fd protoreflect.FieldDescriptor, a protoreflect.Message, has bool, b any) {
	e.Helper()

	if a.Has(fd) != has {
		e.fail("unequal has: want %v, got %v", a.Has(fd), has)
		return
	}

	switch {
	case fd.IsList():
		list, ok := b.([]any)
		if !ok && b != nil {
			e.wrongType(a.Get(fd).List(), b)
			return
		}
		e.list(a.Get(fd).List(), list)

	case fd.Message() != nil:
		if !has {
			if b != nil {
				e.fail("expected nil for unset message, got %v", b)
			}
			return
		}
		m, ok := b.(*protomsg.Message)
		if !ok {
			e.wrongType(a.Get(fd).Message(), b)
			return
		}
		e.message(a.Get(fd).Message(), m)

	default:
		e.scalar(a.Get(fd).Interface(), b)
	}
}

func (e *equal) list(a protoreflect.List, b []any) {
	e.Helper()
	// Compare the common prefix.
	for i := range min(a.Len(), len(b)) {
		e.push(i, func() {
			e.Helper()
			switch v := a.Get(i).Interface().(type) {
			case protoreflect.Message:
				m, ok := b[i].(*protomsg.Message)
				if !ok {
					e.wrongType(v, b[i])
					return
				}
				e.message(v, m)
			default:
				e.scalar(v, b[i])
			}
		})
	}

	if a.Len() != len(b) {
		e.fail("unequal lengths: want %d, got %d", a.Len(), len(b))
	}
}

func (e *equal) scalar(v1, v2 any) {
	e.Helper()

	if reflect.TypeOf(v1) != reflect.TypeOf(v2) {
		e.wrongType(v1, v2)
		return
	}

	switch a := v1.(type) {
	case string:
		if b := v2.(string); a != b {
			e.fail("expected %q:`%x`, got %q:`%x`", a, a, b, b)
		}
	case []byte:
		if b := v2.([]byte); !bytes.Equal(a, b) {
			e.fail("expected %q:`%x`, got %q:`%x`", a, a, b, b)
		}

	// Compare floats bitwise. We want exact comparisons, even for NaN
	// payloads.
	case float32:
		if b := v2.(float32); math.Float32bits(a) != math.Float32bits(b) {
			e.fail("expected %v:0x%x, got %v:0x%x", a, math.Float32bits(a), b, math.Float32bits(b))
		}
	case float64:
		if b := v2.(float64); math.Float64bits(a) != math.Float64bits(b) {
			e.fail("expected %v:0x%x, got %v:0x%x", a, math.Float64bits(a), b, math.Float64bits(b))
		}

	default:
		if v1 != v2 {
			e.fail("expected %v, got %v (%T)", v1, v2, v2)
		}
	}
}

func (e *equal) wrongType(want, got any) {
	e.Helper()
	e.fail("expected %T, got %T", want, got)
}

func (e *equal) push(v any, body func()) {
	e.path = append(e.path, v)
	defer func() { e.path = e.path[:len(e.path)-1] }()
	body()
}

func (e *equal) fail(format string, args ...any) {
	e.Helper()
	e.Errorf("%s: %s", e.formatPath(), fmt.Sprintf(format, args...))
}

func (e *equal) formatPath() string {
	buf := new(strings.Builder)
	for _, v := range e.path {
		if _, ok := v.(int); ok {
			fmt.Fprintf(buf, "[%v]", v)
		} else {
			fmt.Fprintf(buf, ".%v", v)
		}
	}
	if buf.Len() == 0 {
		return "."
	}
	return buf.String()
}
