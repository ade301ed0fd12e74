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

package schema

import (
	"maps"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/protomsg/internal/xerrors"
)

// Registry maps extension keys to extensions.
//
// A Registry is populated at startup and is read-only afterwards; lookups
// perform no synchronization, so every Register and Merge call must
// happen-before any concurrent Find.
type Registry struct {
	Extensions map[Key]*Extension

	// Set once the registry may no longer be mutated.
	Frozen bool
}

// Find looks up the extension of owner with the given number.
//
// Returns nil if r is nil or has no such extension.
func (r *Registry) Find(owner TypeID, n protowire.Number) *Extension {
	if r == nil {
		return nil
	}
	return r.Extensions[Key{Owner: owner, Number: n}]
}

// Len returns the number of extensions in r.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Extensions)
}

// Register adds x to r.
//
// Fails without modifying r if another extension is already registered for
// the same key.
func (r *Registry) Register(x *Extension) error {
	if r.Frozen {
		return xerrors.Usage("cannot register %v: registry is frozen", x.Name)
	}

	if prev := r.Extensions[x.Key()]; prev != nil {
		return xerrors.Wrap(xerrors.DuplicateExtension,
			"%v: field %d of %v is already bound to %v",
			x.Name, x.Number, x.OwnerName, prev.Name)
	}

	if r.Extensions == nil {
		r.Extensions = make(map[Key]*Extension)
	}
	r.Extensions[x.Key()] = x
	return nil
}

// Merge adds every extension in that to r.
//
// If any key in that is bound to a different extension in r, fails without
// modifying r. Keys bound to the same extension in both are not conflicts.
func (r *Registry) Merge(that *Registry) error {
	if r.Frozen {
		return xerrors.Usage("cannot merge into a frozen registry")
	}

	incoming := that.Sorted()
	for _, x := range incoming {
		if prev := r.Extensions[x.Key()]; prev != nil && !prev.Same(x) {
			return xerrors.Wrap(xerrors.Conflict,
				"field %d of %v is bound to both %v and %v",
				x.Number, x.OwnerName, prev.Name, x.Name)
		}
	}

	if r.Extensions == nil && len(incoming) > 0 {
		r.Extensions = make(map[Key]*Extension, len(incoming))
	}
	for _, x := range incoming {
		if _, ok := r.Extensions[x.Key()]; !ok {
			r.Extensions[x.Key()] = x
		}
	}
	return nil
}

// Sorted returns the extensions of r ordered by key.
func (r *Registry) Sorted() []*Extension {
	if r == nil {
		return nil
	}
	return slices.SortedFunc(maps.Values(r.Extensions), func(a, b *Extension) int {
		return a.Key().Compare(b.Key())
	})
}
