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

// msgdump decodes binary protobuf messages against a compiled schema and
// prints their fields, extensions, and unknown data.
//
// Usage:
//
//	msgdump -schema fds.binpb -type pkg.Message [-delimited] [file]
//
// The schema is a serialized google.protobuf.FileDescriptorSet. Every
// extension declared in it is resolved while decoding. Unknown fields are
// printed in protoscope syntax.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/protocolbuffers/protoscope"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg"
)

var (
	schema    = flag.String("schema", "", "path to a binary FileDescriptorSet")
	typeName  = flag.String("type", "", "full name of the message type to decode")
	delimited = flag.Bool("delimited", false, "if set, input is a stream of length-prefixed messages")
	discard   = flag.Bool("discard-unknown", false, "if set, unknown fields are dropped")
	maxDepth  = flag.Int("max-depth", 0, "message nesting limit; zero means the default")
	noExts    = flag.Bool("no-extensions", false, "if set, extensions are left as unknown fields")
)

// config is a parsed command line.
type config struct {
	schema         string
	typeName       string
	input          string // Empty or "-" for stdin.
	delimited      bool
	discardUnknown bool
	maxDepth       int
	noExtensions   bool
}

func main() {
	flag.Parse()
	cfg := config{
		schema:         *schema,
		typeName:       *typeName,
		input:          flag.Arg(0),
		delimited:      *delimited,
		discardUnknown: *discard,
		maxDepth:       *maxDepth,
		noExtensions:   *noExts,
	}
	if err := run(cfg, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "msgdump:", err)
		os.Exit(1)
	}
}

func run(cfg config, stdin io.Reader, out io.Writer) error {
	if cfg.schema == "" || cfg.typeName == "" {
		return errors.New("-schema and -type are required")
	}

	fds, err := os.ReadFile(cfg.schema)
	if err != nil {
		return err
	}
	ty, err := protomsg.CompileFileDescriptorSet(fds, protoreflect.FullName(cfg.typeName))
	if err != nil {
		return err
	}

	in := stdin
	if cfg.input != "" && cfg.input != "-" {
		f, err := os.Open(cfg.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	opts := []protomsg.UnmarshalOption{
		protomsg.WithMaxDepth(cfg.maxDepth),
		protomsg.WithDiscardUnknown(cfg.discardUnknown),
	}
	if cfg.noExtensions {
		opts = append(opts, protomsg.WithRegistry(protomsg.EmptyRegistry()))
	}

	if !cfg.delimited {
		b := ty.NewBuilder()
		if err := b.MergeFrom(in, opts...); err != nil {
			return err
		}
		dump(out, b.Build(), 0)
		return nil
	}

	r := bufio.NewReader(in)
	for i := 0; ; i++ {
		b := ty.NewBuilder()
		err := b.MergeDelimitedFrom(r, opts...)
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
		fmt.Fprintf(out, "# message %d\n", i)
		dump(out, b.Build(), 0)
	}
}

func dump(out io.Writer, m *protomsg.Message, depth int) {
	indent := strings.Repeat("  ", depth)

	for fd, v := range m.Fields() {
		value(out, indent, string(fd.Name()), v, depth)
	}
	for x, v := range m.Extensions() {
		value(out, indent, "["+string(x.FullName())+"]", v, depth)
	}

	if raw := m.Unknown(); len(raw) > 0 {
		fmt.Fprintf(out, "%s# unknown, %d bytes\n", indent, len(raw))
		text := strings.TrimRight(protoscope.Write(raw, protoscope.WriterOptions{}), "\n")
		for _, line := range strings.Split(text, "\n") {
			fmt.Fprintf(out, "%s%s\n", indent, line)
		}
	}
}

func value(out io.Writer, indent, name string, v any, depth int) {
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			value(out, indent, name, e, depth)
		}
	case *protomsg.Message:
		fmt.Fprintf(out, "%s%s {\n", indent, name)
		dump(out, v, depth+1)
		fmt.Fprintf(out, "%s}\n", indent)
	case string:
		fmt.Fprintf(out, "%s%s: %q\n", indent, name, v)
	case []byte:
		fmt.Fprintf(out, "%s%s: %q\n", indent, name, v)
	default:
		fmt.Fprintf(out, "%s%s: %v\n", indent, name, v)
	}
}
