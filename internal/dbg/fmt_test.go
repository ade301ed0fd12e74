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

package dbg_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"buf.build/go/protomsg/internal/dbg"
)

func TestDict(t *testing.T) {
	t.Parallel()

	d := dbg.Dict("msg", "a", 1, "b", nil, "c", dbg.Fprintf("%q", "x"))
	assert.Equal(t, `msg{a: 1, c: "x"}`, fmt.Sprint(d))
	assert.Equal(t, `{}`, dbg.Dict(nil).String())
	assert.Equal(t, `[1, 2, 3]`, dbg.List([]int{1, 2, 3}).String())
}
