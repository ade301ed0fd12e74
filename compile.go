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

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"buf.build/go/protomsg/internal/schema"
	"buf.build/go/protomsg/internal/xunsafe"
)

// CompileMessageDescriptor compiles a descriptor into a [MessageType].
//
// Extensions supplied through [WithExtensionsFromTypes],
// [WithExtensionsFromFiles] or [WithDefaultRegistry] become the type's
// default registry, used when decoding without [WithRegistry].
//
// Panics if the supplied extension sources bind the same field of some
// message to two different extensions.
func CompileMessageDescriptor(md protoreflect.MessageDescriptor, options ...CompileOption) *MessageType {
	var opts compileOptions
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	c := new(schema.Compiler)
	if opts.bundlesExtensions() {
		c.Registry = new(schema.Registry)
	}
	t := c.Compile(md)

	if c.Registry != nil {
		if err := opts.populate(c); err != nil {
			panic(err)
		}
		c.Registry.Frozen = true
	}

	return xunsafe.Cast[MessageType](t)
}

// CompileFileDescriptorSet unmarshals a google.protobuf.FileDescriptorSet
// from data, looks up a message with the given name, and compiles a type
// for it.
//
// Every extension declared in the set is bundled into the type's default
// registry, in addition to those given by options.
func CompileFileDescriptorSet(data []byte, messageName protoreflect.FullName, options ...CompileOption) (*MessageType, error) {
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(data, fds); err != nil {
		return nil, err
	}
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return nil, err
	}
	desc, err := files.FindDescriptorByName(messageName)
	if err != nil {
		return nil, err
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("protomsg: %v is not a message: %w", messageName, protoregistry.NotFound)
	}

	options = append([]CompileOption{WithExtensionsFromFiles(files)}, options...)

	var ty *MessageType
	err = catch(func() { ty = CompileMessageDescriptor(md, options...) })
	return ty, err
}

func (o *compileOptions) bundlesExtensions() bool {
	return len(o.types) > 0 || len(o.files) > 0 || o.registry != nil
}

// populate registers every extension of every type compiled by c.
//
// Message-typed extensions can pull in new types, which can have
// extensions of their own, so this runs until no new types appear.
func (o *compileOptions) populate(c *schema.Compiler) error {
	if o.registry != nil {
		if err := c.Registry.Merge(&o.registry.impl); err != nil {
			return err
		}
	}

	index := o.fileExtensions()
	done := make(map[*schema.Type]bool)
	for {
		var pending []*schema.Type
		for _, t := range c.Types() {
			if !done[t] && t.Extendable() {
				pending = append(pending, t)
			}
			done[t] = true
		}
		if len(pending) == 0 {
			return nil
		}

		for _, t := range pending {
			var xds []protoreflect.ExtensionDescriptor
			for _, types := range o.types {
				types.RangeExtensionsByMessage(t.Name(), func(xt protoreflect.ExtensionType) bool {
					xds = append(xds, xt.TypeDescriptor())
					return true
				})
			}
			xds = append(xds, index[t.Name()]...)

			for _, xd := range xds {
				x, err := c.Extension(xd)
				if err != nil {
					return err
				}
				if prev := c.Registry.Find(x.Owner, x.Number); prev != nil && prev.Same(x) {
					continue
				}
				if err := c.Registry.Register(x); err != nil {
					return err
				}
			}
		}
	}
}

// fileExtensions indexes the extensions in o.files by the message they
// extend.
func (o *compileOptions) fileExtensions() map[protoreflect.FullName][]protoreflect.ExtensionDescriptor {
	index := make(map[protoreflect.FullName][]protoreflect.ExtensionDescriptor)
	for _, files := range o.files {
		files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
			walkExtensions(fd, func(xd protoreflect.ExtensionDescriptor) {
				owner := xd.ContainingMessage().FullName()
				index[owner] = append(index[owner], xd)
			})
			return true
		})
	}
	return index
}

// walkExtensions calls f on every extension declared in a file, including
// those nested inside messages.
func walkExtensions(fd protoreflect.FileDescriptor, f func(protoreflect.ExtensionDescriptor)) {
	var walk func(protoreflect.ExtensionDescriptors, protoreflect.MessageDescriptors)
	walk = func(xds protoreflect.ExtensionDescriptors, mds protoreflect.MessageDescriptors) {
		for i := range xds.Len() {
			f(xds.Get(i))
		}
		for i := range mds.Len() {
			md := mds.Get(i)
			walk(md.Extensions(), md.Messages())
		}
	}
	walk(fd.Extensions(), fd.Messages())
}

// catch converts a panic with an error value into a returned error.
func catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	f()
	return nil
}
