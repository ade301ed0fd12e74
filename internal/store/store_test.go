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

package store_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
	"buf.build/go/protomsg/internal/testdata"
	"buf.build/go/protomsg/internal/xerrors"
)

type fixture struct {
	scalars, implicit *schema.Type
	compiler          *schema.Compiler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := new(schema.Compiler)
	return &fixture{
		scalars:  c.Compile(testdata.Message("protomsg.test.Scalars").Descriptor()),
		implicit: c.Compile(testdata.Message("protomsg.test3.Implicit").Descriptor()),
		compiler: c,
	}
}

func (fx *fixture) ext(t *testing.T, name protoreflect.FullName) *schema.Extension {
	t.Helper()
	x, err := fx.compiler.Extension(testdata.Extension(name))
	require.NoError(t, err)
	return x
}

func TestCheck(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	tests := []struct {
		field int
		ok    []any
		bad   []any
	}{
		{field: 1, ok: []any{int32(5)}, bad: []any{5, int64(5), uint32(5)}},
		{field: 2, ok: []any{int64(5)}, bad: []any{int32(5)}},
		{field: 3, ok: []any{uint32(5)}, bad: []any{uint64(5)}},
		{field: 7, ok: []any{uint32(5)}, bad: []any{int32(5)}},
		{field: 11, ok: []any{float32(1)}, bad: []any{1.0}},
		{field: 12, ok: []any{1.0}, bad: []any{float32(1)}},
		{field: 13, ok: []any{true}, bad: []any{1}},
		{field: 14, ok: []any{"x"}, bad: []any{[]byte("x")}},
		{field: 15, ok: []any{[]byte("x"), []byte(nil)}, bad: []any{"x"}},
		{field: 16, ok: []any{protoreflect.EnumNumber(7)}, bad: []any{int32(7)}},
		{field: 17, ok: []any{new(store.Store)}, bad: []any{(*store.Store)(nil), nil}},
	}

	for _, tt := range tests {
		f := fx.scalars.ByNumber(protowire.Number(tt.field))
		for _, v := range tt.ok {
			assert.NoError(t, store.Check(f, v), "%v: %T", f.Name, v)
		}
		for _, v := range tt.bad {
			assert.ErrorIs(t, store.Check(f, v), xerrors.InvalidUsage, "%v: %T", f.Name, v)
		}
	}
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	for _, v := range []any{false, int32(0), int64(0), uint32(0), uint64(0), float32(0), 0.0, "", []byte{}, protoreflect.EnumNumber(0)} {
		assert.True(t, store.IsZero(v), "%T", v)
	}
	for _, v := range []any{true, int32(1), math.Copysign(0, -1), float32(math.NaN()), "x", new(store.Store)} {
		assert.False(t, store.IsZero(v), "%#v", v)
	}
}

func TestSet(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	s := new(store.Store)
	f := fx.scalars.ByNumber(1)
	assert.False(t, s.Has(f))
	assert.Equal(t, int32(0), s.Get(f))

	// Explicit presence keeps zero values.
	s.Set(f, int32(0))
	assert.True(t, s.Has(f))
	s.Clear(f)
	assert.False(t, s.Has(f))

	def := fx.scalars.ByNumber(40)
	assert.Equal(t, int32(42), s.Get(def))
	s.Set(def, int32(7))
	assert.Equal(t, int32(7), s.Get(def))

	// Implicit presence drops them.
	i32 := fx.implicit.ByNumber(1)
	s = new(store.Store)
	s.Set(i32, int32(3))
	assert.True(t, s.Has(i32))
	s.Set(i32, int32(0))
	assert.False(t, s.Has(i32))

	d := fx.implicit.ByNumber(4)
	s.Set(d, math.Copysign(0, -1))
	assert.True(t, s.Has(d))

	opt := fx.implicit.ByNumber(6)
	s.Set(opt, int64(0))
	assert.True(t, s.Has(opt))
}

func TestOneof(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	s := new(store.Store)
	i, str, msg := fx.scalars.ByNumber(30), fx.scalars.ByNumber(31), fx.scalars.ByNumber(32)

	s.Set(i, int32(1))
	s.Set(str, "x")
	assert.False(t, s.Has(i))
	assert.True(t, s.Has(str))

	s.Mutable(msg)
	assert.False(t, s.Has(str))
	assert.True(t, s.Has(msg))
	assert.Len(t, s.Fields, 1)
}

func TestRepeated(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	s := new(store.Store)
	f := fx.scalars.ByNumber(20)
	assert.Zero(t, s.Len(f))
	s.Append(f, int32(1))
	s.Append(f, int32(2))
	assert.Equal(t, 2, s.Len(f))
	assert.Equal(t, int32(2), s.Index(f, 1))

	assert.PanicsWithError(t, "protomsg: index out of range: protomsg.test.Scalars.rep_int32: index 2, length 2", func() {
		s.Index(f, 2)
	})
}

func TestExtensions(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	s := new(store.Store)
	i32 := fx.ext(t, "protomsg.test.ext_int32")
	rep := fx.ext(t, "protomsg.test.ext_repeated_int32")
	dbl := fx.ext(t, "protomsg.test.ext_double")
	msg := fx.ext(t, "protomsg.test.ext_nested")

	assert.False(t, s.HasExtension(i32))
	assert.Equal(t, 1.5, s.GetExtension(dbl))
	assert.Nil(t, s.GetExtension(msg))
	assert.Equal(t, []any(nil), s.GetExtension(rep))
	assert.Zero(t, s.ExtensionCount(i32))

	s.SetExtension(i32, int32(9))
	s.SetExtension(i32, int32(10))
	assert.True(t, s.HasExtension(i32))
	assert.Equal(t, int32(10), s.GetExtension(i32))
	assert.Equal(t, 1, s.ExtensionCount(i32))

	s.AddExtension(rep, int32(1))
	s.AddExtension(rep, int32(2))
	assert.Equal(t, 2, s.ExtensionCount(rep))
	assert.Equal(t, int32(2), s.ExtensionAt(rep, 1))

	// GetExtension returns a copy of repeated values.
	list := s.GetExtension(rep).([]any)
	list[0] = int32(100)
	assert.Equal(t, int32(1), s.ExtensionAt(rep, 0))

	s.SetExtension(rep, []any{int32(3)})
	assert.Equal(t, 1, s.ExtensionCount(rep))
	s.SetExtension(rep, []any{})
	assert.Zero(t, s.ExtensionCount(rep))

	s.MutableExtension(msg).Set(msg.Message.ByNumber(1), int32(4))
	assert.Equal(t, int32(4), s.GetExtension(msg).(*store.Store).Get(msg.Message.ByNumber(1)))

	s.ClearExtension(i32)
	assert.False(t, s.HasExtension(i32))

	assert.Panics(t, func() { s.HasExtension(rep) })
	assert.Panics(t, func() { s.AddExtension(i32, int32(1)) })
	assert.Panics(t, func() { s.ExtensionAt(i32, 0) })
	assert.Panics(t, func() { s.ExtensionAt(rep, 5) })
}

func TestSorted(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	s := new(store.Store)
	names := []protoreflect.FullName{
		"protomsg.test.ext_bytes",
		"protomsg.test.ext_int32",
		"protomsg.test.ext_enum",
	}
	for _, name := range names {
		x := fx.ext(t, name)
		s.SetExtension(x, x.Default)
	}

	var numbers []int32
	for _, e := range s.Sorted() {
		numbers = append(numbers, int32(e.Ext.Number))
	}
	assert.Equal(t, []int32{100, 106, 107}, numbers)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ty := fx.scalars
	nested := ty.ByNumber(17).Message
	rep := fx.ext(t, "protomsg.test.ext_repeated_int32")

	dst := new(store.Store)
	dst.Set(ty.ByNumber(1), int32(1))
	dst.Set(ty.ByNumber(14), "keep")
	dst.Append(ty.ByNumber(20), int32(1))
	dst.Mutable(ty.ByNumber(17)).Set(nested.ByNumber(1), int32(1))
	dst.AddExtension(rep, int32(1))
	dst.AppendUnknown([]byte{0xf8, 0x3e, 0x01})

	src := new(store.Store)
	src.Set(ty.ByNumber(1), int32(2))
	src.Append(ty.ByNumber(20), int32(2))
	src.Mutable(ty.ByNumber(17)).Set(nested.ByNumber(2), "b")
	src.Set(ty.ByNumber(15), []byte("bytes"))
	src.AddExtension(rep, int32(2))
	src.AppendUnknown([]byte{0xf8, 0x3e, 0x02})

	dst.Merge(ty, src)

	assert.Equal(t, int32(2), dst.Get(ty.ByNumber(1)))
	assert.Equal(t, "keep", dst.Get(ty.ByNumber(14)))
	assert.Equal(t, []any{int32(1), int32(2)}, dst.Fields[20])
	sub := dst.Get(ty.ByNumber(17)).(*store.Store)
	assert.Equal(t, int32(1), sub.Get(nested.ByNumber(1)))
	assert.Equal(t, "b", sub.Get(nested.ByNumber(2)))
	assert.Equal(t, []any{int32(1), int32(2)}, dst.GetExtension(rep))
	assert.Equal(t, []byte{0xf8, 0x3e, 0x01, 0xf8, 0x3e, 0x02}, dst.Unknown)

	// The merged values do not alias src.
	src.Get(ty.ByNumber(15)).([]byte)[0] = 'B'
	assert.Equal(t, []byte("bytes"), dst.Get(ty.ByNumber(15)))
}

func TestCloneEqual(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ty := fx.scalars

	s := new(store.Store)
	s.Set(ty.ByNumber(15), []byte("abc"))
	s.Append(ty.ByNumber(22), new(store.Store))
	s.Mutable(ty.ByNumber(17)).Set(ty.ByNumber(17).Message.ByNumber(2), "x")
	s.SetExtension(fx.ext(t, "protomsg.test.ext_bytes"), []byte("ext"))
	s.AppendUnknown([]byte{0x08, 0x01})

	c := s.Clone()
	assert.True(t, s.Equal(c))
	assert.True(t, c.Equal(s))

	c.Get(ty.ByNumber(15)).([]byte)[0] = 'A'
	assert.Equal(t, []byte("abc"), s.Get(ty.ByNumber(15)))
	assert.False(t, s.Equal(c))

	c = s.Clone()
	c.Unknown[1] = 2
	assert.False(t, s.Equal(c))

	assert.Nil(t, (*store.Store)(nil).Clone())
	assert.True(t, (*store.Store)(nil).Equal(new(store.Store)))

	nan := new(store.Store)
	nan.Set(ty.ByNumber(12), math.NaN())
	assert.False(t, nan.Equal(nan.Clone()))

	s.Reset()
	assert.True(t, s.Equal(nil))
}

func TestCloneBytes(t *testing.T) {
	t.Parallel()

	assert.Nil(t, store.CloneBytes(nil))

	in := []byte("abc")
	out := store.CloneBytes(in)
	assert.Equal(t, in, out)
	in[0] = 'A'
	assert.Equal(t, []byte("abc"), out)
}
