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

// Package codec implements the binary wire decoder and encoder for message
// stores.
//
// Every value kind is handled through a fixed dispatch table indexed by
// [protoreflect.Kind]. Declared fields are found through the type's field
// tables; other tags are resolved against an extension registry, and
// anything left over is kept verbatim as unknown field data.
package codec

import (
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/debug"
	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/store"
)

// DefaultMaxDepth is the nesting limit used when [Options.MaxDepth] is zero.
const DefaultMaxDepth = 1000

// Options configures a call to [Merge].
type Options struct {
	// Extensions to resolve while decoding. May be nil.
	Registry *schema.Registry

	MaxDepth         int
	DiscardUnknown   bool
	AllowInvalidUTF8 bool
}

// Merge decodes b as a message of type t and merges it into s.
//
// On error, s holds every field decoded before the failure.
func Merge(t *schema.Type, s *store.Store, b []byte, opts Options) error {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	d := decoder{Options: opts, src: b}
	return d.message(t, s, 0, len(b), 0)
}

type decoder struct {
	Options
	src []byte
}

// target is where the decoder deposits values for one field.
type target struct {
	s *store.Store
	f *schema.Field
	x *schema.Extension // Nil for declared fields.
}

// emit stores a single decoded value.
func (t target) emit(v any) {
	switch {
	case t.x == nil && t.f.Repeated:
		t.s.Append(t.f, v)
	case t.x == nil:
		t.s.Set(t.f, v)
	case t.f.Repeated:
		t.s.AddExtension(t.x, v)
	default:
		t.s.SetExtension(t.x, v)
	}
}

// into returns the store a message value should be decoded into: a fresh one
// for repeated fields, or the existing one for singular fields, so that
// repeated occurrences merge.
func (t target) into() *store.Store {
	switch {
	case t.f.Repeated:
		s := new(store.Store)
		t.emit(s)
		return s
	case t.x == nil:
		return t.s.Mutable(t.f)
	default:
		return t.s.MutableExtension(t.x)
	}
}

func (d *decoder) fail(code ErrorCode, offset int, f *schema.Field) error {
	err := &ParseError{code: code, offset: offset}
	if f != nil {
		err.field = string(f.Name)
	}
	if debug.Enabled {
		debug.Log(nil, "fail", "%v", err)
	}
	return err
}

// message decodes d.src[off:end] into s.
func (d *decoder) message(t *schema.Type, s *store.Store, off, end, depth int) error {
	if depth > d.MaxDepth {
		return d.fail(ErrorRecursionDepth, off, nil)
	}

	for off < end {
		start := off
		num, wt, n := protowire.ConsumeTag(d.src[off:end])
		if n < 0 {
			return d.fail(wireCode(n), off, nil)
		}
		if num > protowire.MaxValidNumber {
			return d.fail(ErrorFieldNumber, off, nil)
		}
		if wt == protowire.EndGroupType {
			return d.fail(ErrorEndGroup, off, nil)
		}
		off += n

		tgt := target{s: s, f: t.ByNumber(num)}
		if tgt.f == nil {
			if x := d.Registry.Find(t.ID, num); x != nil {
				tgt.f, tgt.x = &x.Field, x
			}
		}

		if tgt.f == nil {
			m := protowire.ConsumeFieldValue(num, wt, d.src[off:end])
			if m < 0 {
				return d.fail(wireCode(m), off, nil)
			}
			if debug.Enabled {
				debug.Log([]any{"%v", t.Name()}, "unknown", "#%d/%v, %d bytes", num, wt, off+m-start)
			}
			if !d.DiscardUnknown {
				s.AppendUnknown(d.src[start : off+m])
			}
			off += m
			continue
		}

		if debug.Enabled {
			debug.Log([]any{"%v", t.Name()}, "field", "%v @ %#x", tgt.f.Name, start)
		}
		m, err := d.field(tgt, wt, off, end, depth)
		if err != nil {
			return err
		}
		off += m
	}
	return nil
}

// field decodes one value of a known field, starting just after its tag.
// Returns the number of bytes consumed.
func (d *decoder) field(t target, wt protowire.Type, off, end, depth int) (int, error) {
	f := t.f
	k := lookup(f.Kind)
	b := d.src[off:end]

	switch {
	case wt != k.wire && !(f.Repeated && k.packable && wt == protowire.BytesType):
		return 0, d.fail(ErrorWireType, off, f)

	case f.Kind == protoreflect.GroupKind:
		body, n := protowire.ConsumeGroup(f.Number, b)
		if n < 0 {
			return 0, d.fail(wireCode(n), off, f)
		}
		return n, d.message(f.Message, t.into(), off, off+len(body), depth+1)

	case f.Kind == protoreflect.MessageKind:
		body, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, d.fail(wireCode(n), off, f)
		}
		start := off + n - len(body)
		return n, d.message(f.Message, t.into(), start, start+len(body), depth+1)

	case wt != k.wire:
		// Packed encoding of a repeated scalar.
		body, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, d.fail(wireCode(n), off, f)
		}
		start := off + n - len(body)
		for len(body) > 0 {
			v, m := k.decode(body)
			if m < 0 {
				return 0, d.fail(wireCode(m), start, f)
			}
			t.emit(v)
			body = body[m:]
			start += m
		}
		return n, nil

	default:
		v, n := k.decode(b)
		if n < 0 {
			return 0, d.fail(wireCode(n), off, f)
		}
		if k.utf8 && !d.AllowInvalidUTF8 && !utf8.ValidString(v.(string)) {
			return 0, d.fail(ErrorUTF8, off, f)
		}
		t.emit(v)
		return n, nil
	}
}
