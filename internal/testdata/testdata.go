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

// Package testdata holds the schemas and the specimen corpus shared by
// protomsg's tests.
package testdata

import (
	"bytes"
	"embed"
	"encoding/hex"
	"io/fs"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"gopkg.in/yaml.v3"

	"buf.build/go/protomsg"
	"buf.build/go/protomsg/internal/debug"
	"buf.build/go/protomsg/internal/prototest"
)

var (
	//go:embed schema.textproto
	schemaText []byte

	//go:embed cases
	cases embed.FS
)

type loaded struct {
	set   *descriptorpb.FileDescriptorSet
	files *protoregistry.Files
	types *protoregistry.Types
}

var load = sync.OnceValue(func() *loaded {
	set := new(descriptorpb.FileDescriptorSet)
	if err := prototext.Unmarshal(schemaText, set); err != nil {
		panic(err)
	}
	files, err := protodesc.NewFiles(set)
	if err != nil {
		panic(err)
	}

	types := new(protoregistry.Types)
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		for i := range fd.Enums().Len() {
			must(types.RegisterEnum(dynamicpb.NewEnumType(fd.Enums().Get(i))))
		}
		registerMessages(types, fd.Messages())
		for i := range fd.Extensions().Len() {
			must(types.RegisterExtension(dynamicpb.NewExtensionType(fd.Extensions().Get(i))))
		}
		return true
	})

	return &loaded{set: set, files: files, types: types}
})

func registerMessages(types *protoregistry.Types, mds protoreflect.MessageDescriptors) {
	for i := range mds.Len() {
		md := mds.Get(i)
		must(types.RegisterMessage(dynamicpb.NewMessageType(md)))
		registerMessages(types, md.Messages())
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Files returns the test schemas.
func Files() *protoregistry.Files {
	return load().files
}

// Types returns dynamic types for every message, enum, and extension in the
// test schemas.
func Types() *protoregistry.Types {
	return load().types
}

// Schema returns the test schemas as a serialized FileDescriptorSet.
func Schema() []byte {
	b, err := proto.Marshal(load().set)
	must(err)
	return b
}

// Message returns the dynamic type of the named message.
func Message(name protoreflect.FullName) protoreflect.MessageType {
	mt, err := Types().FindMessageByName(name)
	must(err)
	return mt
}

// Extension returns the descriptor of the named extension.
func Extension(name protoreflect.FullName) protoreflect.ExtensionDescriptor {
	xt, err := Types().FindExtensionByName(name)
	must(err)
	return xt.TypeDescriptor()
}

// Compile compiles the named message, bundling every extension in the test
// schemas.
func Compile(name protoreflect.FullName) *protomsg.MessageType {
	return protomsg.CompileMessageDescriptor(
		Message(name).Descriptor(),
		protomsg.WithExtensionsFromTypes(Types()),
	)
}

// Harness is a generalization of [testing.TB] that also includes the
// [testing.T.Run] method. It must be generic because the signature of this
// function varies across [testing.T] and [testing.B].
type Harness[T any] interface {
	testing.TB
	Run(string, func(T)) bool
}

// TestCase is a test case from the specimen corpus.
type TestCase struct {
	Name string `yaml:"-"`

	TypeName string `yaml:"type"`
	Type     struct {
		Dynamic  protoreflect.MessageType
		Compiled *protomsg.MessageType
	} `yaml:"-"`

	// If set, every specimen must fail to decode with ErrMalformedInput.
	// protobuf-go is not consulted, since it is more lenient in some places.
	Malformed bool `yaml:"malformed"`

	// Three ways to encode the test: hex, textproto, and protoscope
	Hex        []string `yaml:"hex"`
	TextProto  []string `yaml:"textproto"`
	Protoscope []string `yaml:"protoscope"`

	Specimens [][]byte `yaml:"-"`
}

// RunAll runs all of the test cases against the given harness.
func RunAll[T Harness[T]](t T, f func(T, *TestCase)) {
	t.Helper()

	var failed atomic.Bool
	err := fs.WalkDir(cases, ".", func(file string, d fs.DirEntry, err error) error {
		require.NoError(t, err, "loading test %q", file)

		if d.IsDir() || path.Ext(file) != ".yaml" {
			return nil
		}

		t.Run(strings.TrimPrefix(file, "cases/"), func(t T) {
			if t, ok := any(t).(*testing.T); ok {
				t.Parallel()
			}

			defer failed.CompareAndSwap(false, t.Failed())

			data, err := fs.ReadFile(cases, file)
			require.NoError(t, err, "loading test %q", file)

			f(t, parseTestCase(t, file, data))
		})

		return nil
	})
	require.NoError(t, err)
}

// Run executes a single test case.
//
// Each specimen is decoded by both protobuf-go and protomsg, and the results
// are compared. Then, the protomsg message is re-encoded, and the result is
// checked with protobuf-go again.
func (test *TestCase) Run(t *testing.T) {
	t.Helper()

	run := func(t *testing.T, specimen []byte) {
		t.Helper()
		defer debug.WithTesting(t)()

		got, err := test.Type.Compiled.Unmarshal(specimen)
		if test.Malformed {
			require.ErrorIs(t, err, protomsg.ErrMalformedInput)
			var perr *protomsg.ParseError
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Offset(), 0)
			return
		}

		unmarshal := proto.UnmarshalOptions{Resolver: Types()}
		want := test.Type.Dynamic.New().Interface()
		if wantErr := unmarshal.Unmarshal(specimen, want); wantErr != nil {
			require.Error(t, err, "protobuf-go error: %v", wantErr)
			return
		}
		require.NoError(t, err)
		prototest.Equal(t, want, got)

		// Re-encode and check that protobuf-go sees the same message.
		again := test.Type.Dynamic.New().Interface()
		require.NoError(t, unmarshal.Unmarshal(got.Marshal(), again))
		if diff := cmp.Diff(want, again, protocmp.Transform()); diff != "" {
			t.Errorf("re-encoded message differs (-want +got):\n%s", diff)
		}

		// Decoding without a registry keeps extensions as unknown fields,
		// and re-encoding must give them back intact.
		opaque, err := test.Type.Compiled.Unmarshal(specimen, protomsg.WithRegistry(protomsg.EmptyRegistry()))
		require.NoError(t, err)
		resolved, err := test.Type.Compiled.Unmarshal(opaque.Marshal())
		require.NoError(t, err)
		assert.True(t, got.Equal(resolved), "want: %v\ngot:  %v", got, resolved)
	}

	if len(test.Specimens) == 1 {
		run(t, test.Specimens[0])
		return
	}

	for _, specimen := range test.Specimens {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			run(t, specimen)
		})
	}
}

// parseTestCase parses a single test case from the given data.
//
// This will call t.FailNow() if parsing fails.
func parseTestCase(t testing.TB, file string, data []byte) *TestCase {
	t.Helper()
	defer debug.WithTesting(t)()

	require.True(t, bytes.HasSuffix(data, []byte("\n")), "missing trailing newline in %q", file)

	test := new(TestCase)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&test)
	require.NoError(t, err, "loading test %q", file)

	test.Name = strings.TrimPrefix(file, "cases/")
	test.Type.Dynamic, err = Types().FindMessageByName(protoreflect.FullName(test.TypeName))
	require.NoError(t, err, "loading type %q", test.TypeName)
	test.Type.Compiled = Compile(protoreflect.FullName(test.TypeName))

	for _, raw := range test.Hex {
		r := strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "")
		b, err := hex.DecodeString(r.Replace(raw))
		require.NoError(t, err, "loading test %q", file)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.TextProto {
		m := test.Type.Dynamic.New().Interface()
		err = prototext.UnmarshalOptions{Resolver: Types()}.Unmarshal([]byte(raw), m)
		require.NoError(t, err, "loading test %q", file)

		b, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
		require.NoError(t, err, "loading test %q", file)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.Protoscope {
		s := protoscope.NewScanner(raw)
		b, err := s.Exec()
		require.NoError(t, err, "loading test %q", file)

		test.Specimens = append(test.Specimens, b)
	}

	require.NotEmpty(t, test.Specimens, "test %q has no specimens", file)
	return test
}
