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
	"buf.build/go/protomsg/internal/codec"
	"buf.build/go/protomsg/internal/xerrors"
)

var (
	// ErrMalformedInput is matched by every error produced while decoding
	// wire data.
	ErrMalformedInput = xerrors.MalformedInput

	// ErrInvalidUsage is matched by panics caused by misusing the API, and by
	// errors from mutating a frozen [ExtensionRegistry].
	ErrInvalidUsage = xerrors.InvalidUsage

	// ErrDuplicateExtension is returned by [ExtensionRegistry.Register] when
	// the extension's owner and number are already taken.
	ErrDuplicateExtension = xerrors.DuplicateExtension

	// ErrConflict is returned by [ExtensionRegistry.Merge] when both
	// registries bind the same owner and number to different extensions.
	ErrConflict = xerrors.Conflict

	// ErrIndexOutOfRange is matched by panics from indexing past the end of a
	// repeated field or extension.
	ErrIndexOutOfRange = xerrors.IndexOutOfRange
)

// ParseError is an error produced while decoding wire data.
//
// It records the offset at which decoding failed, and matches both
// [ErrMalformedInput] and a more specific cause, such as
// [io.ErrUnexpectedEOF] for truncated input.
type ParseError = codec.ParseError

// ParseErrorCode is the kind of a [ParseError].
type ParseErrorCode = codec.ErrorCode

const (
	ParseErrorTruncated      = codec.ErrorTruncated
	ParseErrorFieldNumber    = codec.ErrorFieldNumber
	ParseErrorOverflow       = codec.ErrorOverflow
	ParseErrorReserved       = codec.ErrorReserved
	ParseErrorEndGroup       = codec.ErrorEndGroup
	ParseErrorRecursionDepth = codec.ErrorRecursionDepth
	ParseErrorUTF8           = codec.ErrorUTF8
	ParseErrorWireType       = codec.ErrorWireType
)
