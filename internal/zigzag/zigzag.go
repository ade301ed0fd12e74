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

// Package zigzag implements zigzag coding for sized integers.
package zigzag

import (
	"unsafe"

	"google.golang.org/protobuf/encoding/protowire"
)

// Int is any of the signed integer types that can be zigzag coded.
type Int interface {
	~int32 | ~int64
}

// Decode decodes a zigzag-encoded value of any type.
//
// Calling protowire.DecodeZigZag directly does not work correctly for
// 32-bit values when sign extension is involved.
func Decode[T Int](raw T) T {
	n := uint64(raw)
	n &= (1 << (unsafe.Sizeof(raw) * 8)) - 1

	return T(protowire.DecodeZigZag(n))
}

// Decode64 is a helper for calling zigzag with a raw 64-bit input.
func Decode64[T Int](raw uint64) T {
	return Decode(T(raw))
}

// Encode zigzag-encodes v, truncated to the width of T.
func Encode[T Int](v T) uint64 {
	n := protowire.EncodeZigZag(int64(v))
	n &= (1 << (unsafe.Sizeof(v) * 8)) - 1
	return n
}
