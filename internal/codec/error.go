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
	"errors"
	"fmt"
	"io"

	"buf.build/go/protomsg/internal/xerrors"
)

const (
	ErrorOk ErrorCode = iota
	// These match the errors in protowire, negated.
	ErrorTruncated
	ErrorFieldNumber
	ErrorOverflow
	ErrorReserved
	ErrorEndGroup
	ErrorRecursionDepth

	ErrorUTF8
	ErrorWireType
)

var errs = [...]error{
	ErrorOk:             nil,
	ErrorTruncated:      io.ErrUnexpectedEOF,
	ErrorFieldNumber:    errors.New("invalid field number"),
	ErrorOverflow:       errors.New("variable length integer overflow"),
	ErrorReserved:       errors.New("cannot parse reserved wire type"),
	ErrorEndGroup:       errors.New("mismatching end group marker"),
	ErrorRecursionDepth: errors.New("recursion depth exceeded"),
	ErrorUTF8:           errors.New("invalid UTF-8 in string"),
	ErrorWireType:       errors.New("wrong wire type for field"),
}

// ErrorCode is one of the possible types of errors in [ParseError].
type ErrorCode int

// wireCode converts a negative protowire length into an [ErrorCode].
func wireCode(n int) ErrorCode {
	code := ErrorCode(-n)
	if code <= ErrorOk || code > ErrorRecursionDepth {
		return ErrorTruncated
	}
	return code
}

// ParseError is an error returned by the decoder.
//
// It matches [xerrors.MalformedInput] and the specific cause via
// [errors.Is].
type ParseError struct {
	code   ErrorCode
	offset int
	field  string
}

// Code returns the kind of failure.
func (e *ParseError) Code() ErrorCode {
	return e.code
}

// Offset returns the offset at which the error occurred.
func (e *ParseError) Offset() int {
	return e.offset
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (e *ParseError) Unwrap() []error {
	return []error{xerrors.MalformedInput, errs[e.code]}
}

// Error implements [error].
func (e *ParseError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("protomsg: parse error at offset %d/%#x in %s: %v", e.offset, e.offset, e.field, errs[e.code])
	}
	return fmt.Sprintf("protomsg: parse error at offset %d/%#x: %v", e.offset, e.offset, errs[e.code])
}

// NewParseError returns a new error with the given code and offset.
func NewParseError(code ErrorCode, offset int) *ParseError {
	return &ParseError{code: code, offset: offset}
}
