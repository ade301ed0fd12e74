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

package xsync

import "sync/atomic"

// Interner assigns small, process-unique identifiers to keys.
//
// The same key always receives the same identifier. Identifiers start at 1
// and are not necessarily dense, because a racing LoadOrStore may burn one.
//
// A zero Interner is ready to use.
type Interner[K comparable] struct {
	ids  Map[K, uint32]
	next atomic.Uint32
}

// Intern returns the identifier for k, allocating one if necessary.
func (i *Interner[K]) Intern(k K) uint32 {
	id, _ := i.ids.LoadOrStore(k, func() uint32 { return i.next.Add(1) })
	return id
}

// Lookup returns the identifier for k, if one has been allocated.
func (i *Interner[K]) Lookup(k K) (uint32, bool) {
	return i.ids.Load(k)
}
