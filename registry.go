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
	"iter"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"buf.build/go/protomsg/internal/debug"
	"buf.build/go/protomsg/internal/schema"
)

// ExtensionRegistry resolves extension fields while decoding, by mapping the
// [TypeID] of the extended message and a field number to an [Extension].
//
// A registry is populated once, typically at program startup, and read-only
// afterwards. Every call to [ExtensionRegistry.Register] and
// [ExtensionRegistry.Merge] must happen-before any decode that uses the
// registry; lookups take no locks. [ExtensionRegistry.Freeze] turns further
// mutation into an error.
//
// The zero value is an empty, mutable registry.
type ExtensionRegistry struct {
	impl schema.Registry
}

var emptyRegistry = sync.OnceValue(func() *ExtensionRegistry {
	r := new(ExtensionRegistry)
	r.Freeze()
	return r
})

// EmptyRegistry returns a shared registry with no extensions, which cannot
// be mutated.
//
// Decoding with the empty registry keeps every extension field as unknown
// field data.
func EmptyRegistry() *ExtensionRegistry {
	return emptyRegistry()
}

// NewExtensionRegistry returns a new empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return new(ExtensionRegistry)
}

// NewRegistryFromTypes returns a new registry holding every extension known
// to types.
func NewRegistryFromTypes(types *protoregistry.Types) (*ExtensionRegistry, error) {
	r := NewExtensionRegistry()
	var err error
	types.RangeExtensions(func(xt protoreflect.ExtensionType) bool {
		err = r.registerDescriptor(xt.TypeDescriptor())
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistryFromFiles returns a new registry holding every extension
// declared in files.
func NewRegistryFromFiles(files *protoregistry.Files) (*ExtensionRegistry, error) {
	r := NewExtensionRegistry()
	var err error
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		walkExtensions(fd, func(xd protoreflect.ExtensionDescriptor) {
			if err == nil {
				err = r.registerDescriptor(xd)
			}
		})
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds an extension to this registry.
//
// Fails with [ErrDuplicateExtension] if an extension with the same owner
// and number is already registered, in which case the registry is left
// unchanged. Fails with [ErrInvalidUsage] if the registry is frozen.
func (r *ExtensionRegistry) Register(x *Extension) error {
	if debug.Enabled {
		debug.Log(nil, "register", "%v", x)
	}
	return r.impl.Register(&x.impl)
}

// Find returns the extension of the given message type with the given
// number, or nil if there is none.
func (r *ExtensionRegistry) Find(owner TypeID, number protoreflect.FieldNumber) *Extension {
	if r == nil {
		return nil
	}
	x := r.impl.Find(owner, number)
	if x == nil {
		return nil
	}
	return wrapExtension(x)
}

// FindByName is like [ExtensionRegistry.Find], but names the extended type
// by its full name.
func (r *ExtensionRegistry) FindByName(owner protoreflect.FullName, number protoreflect.FieldNumber) *Extension {
	return r.Find(TypeIDOf(owner), number)
}

// Merge adds every extension in that to this registry.
//
// Fails with [ErrConflict] if both registries bind some owner and number to
// different extensions, in which case nothing is added. Fails with
// [ErrInvalidUsage] if this registry is frozen.
func (r *ExtensionRegistry) Merge(that *ExtensionRegistry) error {
	if that == nil {
		that = EmptyRegistry()
	}
	return r.impl.Merge(&that.impl)
}

// Freeze makes this registry read-only. Subsequent calls to Register and
// Merge fail with [ErrInvalidUsage].
func (r *ExtensionRegistry) Freeze() {
	r.impl.Frozen = true
}

// Frozen returns whether [ExtensionRegistry.Freeze] has been called.
func (r *ExtensionRegistry) Frozen() bool {
	return r.impl.Frozen
}

// Len returns the number of extensions in this registry.
func (r *ExtensionRegistry) Len() int {
	if r == nil {
		return 0
	}
	return r.impl.Len()
}

// All yields every extension in this registry, ordered by owner and number.
func (r *ExtensionRegistry) All() iter.Seq[*Extension] {
	return func(yield func(*Extension) bool) {
		if r == nil {
			return
		}
		for _, x := range r.impl.Sorted() {
			if !yield(wrapExtension(x)) {
				return
			}
		}
	}
}

// Format implements [fmt.Formatter].
func (r *ExtensionRegistry) Format(s fmt.State, verb rune) {
	fmt.Fprintf(s, "ExtensionRegistry{len: %d, frozen: %v}", r.Len(), r.Frozen())
}

// registerDescriptor compiles and registers xd. The message types it pulls
// in resolve extensions through r by default.
func (r *ExtensionRegistry) registerDescriptor(xd protoreflect.ExtensionDescriptor) error {
	c := &schema.Compiler{Registry: &r.impl}
	x, err := c.Extension(xd)
	if err != nil {
		return err
	}
	return r.Register(wrapExtension(x))
}

// resolve returns the internal registry, treating nil as empty.
func (r *ExtensionRegistry) resolve() *schema.Registry {
	if r == nil {
		return nil
	}
	return &r.impl
}
