// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package builder

import (
	"math"
	"strconv"
)

// floatBits renders value's IEEE-754 bit pattern as a decimal string, the
// format the data section stores float/double literals in (§3,
// "float/double values are stored as the decimal representation of their
// IEEE-754 bit pattern").
func floatBits(value float64, isDouble bool) string {
	if isDouble {
		return strconv.FormatUint(math.Float64bits(value), 10)
	}
	return strconv.FormatUint(uint64(math.Float32bits(float32(value))), 10)
}
