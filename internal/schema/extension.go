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
	"cmp"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/dbg"
	"buf.build/go/protomsg/internal/xerrors"
)

// Key is the identity of an extension: the type it extends, and its number.
type Key struct {
	Owner  TypeID
	Number protowire.Number
}

// Compare orders keys by owner, then by number.
func (k Key) Compare(that Key) int {
	if c := cmp.Compare(k.Owner, that.Owner); c != 0 {
		return c
	}
	return cmp.Compare(k.Number, that.Number)
}

// Extension is a compiled extension descriptor.
//
// Extensions are immutable once compiled, and are shared by every message
// of the owning type.
type Extension struct {
	Field

	Owner     TypeID
	OwnerName protoreflect.FullName
}

// Key returns this extension's identity.
func (x *Extension) Key() Key {
	return Key{Owner: x.Owner, Number: x.Number}
}

// Same returns whether x and y describe the same extension, even if they were
// compiled separately.
func (x *Extension) Same(y *Extension) bool {
	return x == y || (x.Key() == y.Key() &&
		x.Name == y.Name &&
		x.Kind == y.Kind &&
		x.Repeated == y.Repeated)
}

// Format implements [fmt.Formatter].
func (x *Extension) Format(s fmt.State, verb rune) {
	dbg.Dict(
		dbg.Fprintf("[%v]", x.Name),
		"owner", x.OwnerName,
		"number", int32(x.Number),
		"kind", x.Kind,
		"repeated", x.Repeated,
	).Format(s, verb)
}

// Extension compiles an extension descriptor.
//
// Fails if the extended message has no extension range covering the
// extension's number.
func (c *Compiler) Extension(xd protoreflect.ExtensionDescriptor) (*Extension, error) {
	if !xd.IsExtension() {
		return nil, xerrors.Usage("%v is not an extension", xd.FullName())
	}

	owner := xd.ContainingMessage()
	if !owner.ExtensionRanges().Has(xd.Number()) {
		return nil, xerrors.Usage("%v: field number %d is not in an extension range of %v",
			xd.FullName(), xd.Number(), owner.FullName())
	}

	return &Extension{
		Field:     *c.field(xd),
		Owner:     IDOf(owner.FullName()),
		OwnerName: owner.FullName(),
	}, nil
}
