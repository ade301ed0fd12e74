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

// Package xerrors holds the error values shared by protomsg's internal
// packages. The root package re-exports the sentinels.
package xerrors

import (
	"errors"
	"fmt"
)

var (
	MalformedInput     = errors.New("protomsg: malformed input")
	InvalidUsage       = errors.New("protomsg: invalid usage")
	DuplicateExtension = errors.New("protomsg: duplicate extension")
	Conflict           = errors.New("protomsg: conflicting extension")
	IndexOutOfRange    = errors.New("protomsg: index out of range")
)

// Wrap returns an error that matches sentinel via [errors.Is], with a
// formatted detail appended to the sentinel's message.
func Wrap(sentinel error, format string, args ...any) error {
	return &wrapped{sentinel, fmt.Sprintf(format, args...)}
}

// Usage is shorthand for Wrap(InvalidUsage, ...).
//
// Values returned by Usage are meant to be panicked with: they describe
// programmer errors, not runtime conditions.
func Usage(format string, args ...any) error {
	return Wrap(InvalidUsage, format, args...)
}

type wrapped struct {
	sentinel error
	detail   string
}

// Error implements [error].
func (e *wrapped) Error() string {
	return e.sentinel.Error() + ": " + e.detail
}

// Unwrap implements error unwrapping viz [errors.Unwrap].
func (e *wrapped) Unwrap() error {
	return e.sentinel
}
