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

package codec

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/protomsg/internal/zigzag"
)

// kindInfo describes how values of one [protoreflect.Kind] appear on the
// wire.
//
// decode and encode are nil for message and group kinds, which the decoder
// and encoder handle directly.
type kindInfo struct {
	wire     protowire.Type
	packable bool
	utf8     bool

	// decode consumes a single value from the front of b. It returns a
	// negative length on failure, as protowire does.
	decode func(b []byte) (any, int)
	// encode appends v without a tag.
	encode func(b []byte, v any) []byte
}

// kinds is the dispatch table for every value kind, indexed by
// [protoreflect.Kind].
var kinds = [...]kindInfo{
	protoreflect.BoolKind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return v != 0 }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, protowire.EncodeBool(v.(bool))) },
	},
	protoreflect.EnumKind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return protoreflect.EnumNumber(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, uint64(v.(protoreflect.EnumNumber))) },
	},
	protoreflect.Int32Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return int32(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, uint64(v.(int32))) },
	},
	protoreflect.Sint32Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return zigzag.Decode64[int32](v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, zigzag.Encode(v.(int32))) },
	},
	protoreflect.Uint32Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return uint32(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, uint64(v.(uint32))) },
	},
	protoreflect.Int64Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return int64(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, uint64(v.(int64))) },
	},
	protoreflect.Sint64Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return zigzag.Decode64[int64](v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, zigzag.Encode(v.(int64))) },
	},
	protoreflect.Uint64Kind: {
		wire: protowire.VarintType, packable: true,
		decode: varint(func(v uint64) any { return v }),
		encode: func(b []byte, v any) []byte { return protowire.AppendVarint(b, v.(uint64)) },
	},

	protoreflect.Sfixed32Kind: {
		wire: protowire.Fixed32Type, packable: true,
		decode: fixed32(func(v uint32) any { return int32(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed32(b, uint32(v.(int32))) },
	},
	protoreflect.Fixed32Kind: {
		wire: protowire.Fixed32Type, packable: true,
		decode: fixed32(func(v uint32) any { return v }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed32(b, v.(uint32)) },
	},
	protoreflect.FloatKind: {
		wire: protowire.Fixed32Type, packable: true,
		decode: fixed32(func(v uint32) any { return math.Float32frombits(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed32(b, math.Float32bits(v.(float32))) },
	},

	protoreflect.Sfixed64Kind: {
		wire: protowire.Fixed64Type, packable: true,
		decode: fixed64(func(v uint64) any { return int64(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed64(b, uint64(v.(int64))) },
	},
	protoreflect.Fixed64Kind: {
		wire: protowire.Fixed64Type, packable: true,
		decode: fixed64(func(v uint64) any { return v }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed64(b, v.(uint64)) },
	},
	protoreflect.DoubleKind: {
		wire: protowire.Fixed64Type, packable: true,
		decode: fixed64(func(v uint64) any { return math.Float64frombits(v) }),
		encode: func(b []byte, v any) []byte { return protowire.AppendFixed64(b, math.Float64bits(v.(float64))) },
	},

	protoreflect.StringKind: {
		wire: protowire.BytesType, utf8: true,
		decode: func(b []byte) (any, int) {
			v, n := protowire.ConsumeBytes(b)
			return string(v), n
		},
		encode: func(b []byte, v any) []byte { return protowire.AppendString(b, v.(string)) },
	},
	protoreflect.BytesKind: {
		wire: protowire.BytesType,
		decode: func(b []byte) (any, int) {
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, n
			}
			// Never alias the input buffer.
			return append([]byte{}, v...), n
		},
		encode: func(b []byte, v any) []byte { return protowire.AppendBytes(b, v.([]byte)) },
	},

	protoreflect.MessageKind: {wire: protowire.BytesType},
	protoreflect.GroupKind:   {wire: protowire.StartGroupType},
}

// lookup returns the dispatch entry for k.
func lookup(k protoreflect.Kind) *kindInfo {
	if int(k) >= len(kinds) || k <= 0 {
		return nil
	}
	return &kinds[k]
}

func varint(conv func(uint64) any) func([]byte) (any, int) {
	return func(b []byte) (any, int) {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, n
		}
		return conv(v), n
	}
}

func fixed32(conv func(uint32) any) func([]byte) (any, int) {
	return func(b []byte) (any, int) {
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return nil, n
		}
		return conv(v), n
	}
}

func fixed64(conv func(uint64) any) func([]byte) (any, int) {
	return func(b []byte) (any, int) {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, n
		}
		return conv(v), n
	}
}
