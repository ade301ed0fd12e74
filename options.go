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
	"math"

	"google.golang.org/protobuf/reflect/protoregistry"

	"buf.build/go/protomsg/internal/codec"
)

// The below are not interfaces, so that callers cannot construct options
// that this package does not know how to apply.

// CompileOption is a configuration setting for [CompileMessageDescriptor].
type CompileOption struct{ apply func(*compileOptions) }

type compileOptions struct {
	types    []*protoregistry.Types
	files    []*protoregistry.Files
	registry *ExtensionRegistry
}

// WithExtensionsFromTypes bundles every extension of the compiled types that
// types knows about into the compiled type's default registry.
func WithExtensionsFromTypes(types *protoregistry.Types) CompileOption {
	return CompileOption{func(c *compileOptions) { c.types = append(c.types, types) }}
}

// WithExtensionsFromFiles bundles every extension of the compiled types that
// is declared in files into the compiled type's default registry.
func WithExtensionsFromFiles(files *protoregistry.Files) CompileOption {
	return CompileOption{func(c *compileOptions) { c.files = append(c.files, files) }}
}

// WithDefaultRegistry bundles the extensions of an existing registry into
// the compiled type's default registry.
//
// The registry's contents are copied at compile time.
func WithDefaultRegistry(r *ExtensionRegistry) CompileOption {
	return CompileOption{func(c *compileOptions) { c.registry = r }}
}

// UnmarshalOption is a configuration setting for [Builder.Merge] and
// related functions.
type UnmarshalOption struct{ apply func(*codec.Options) }

// WithRegistry sets the registry used to resolve extension fields.
//
// Passing nil, or [EmptyRegistry], resolves no extensions: every field that
// the message does not declare is kept as unknown field data. When this
// option is absent, the registry bundled with the message type at compile
// time is used.
func WithRegistry(r *ExtensionRegistry) UnmarshalOption {
	return UnmarshalOption{func(opts *codec.Options) { opts.Registry = r.resolve() }}
}

// WithMaxDepth sets the maximum recursion depth for the parser. The default
// is 1000.
//
// Setting a large value enables potential DoS vectors.
func WithMaxDepth(depth int) UnmarshalOption {
	return UnmarshalOption{func(opts *codec.Options) { opts.MaxDepth = min(depth, math.MaxInt32) }}
}

// WithDiscardUnknown sets whether unknown fields should be discarded while
// parsing. Analogous to [proto.UnmarshalOptions].
//
// Setting this option breaks round-tripping of unrecognized extensions.
func WithDiscardUnknown(discard bool) UnmarshalOption {
	return UnmarshalOption{func(opts *codec.Options) { opts.DiscardUnknown = discard }}
}

// WithAllowInvalidUTF8 sets whether UTF-8 validation of string fields is
// skipped.
func WithAllowInvalidUTF8(allow bool) UnmarshalOption {
	return UnmarshalOption{func(opts *codec.Options) { opts.AllowInvalidUTF8 = allow }}
}
