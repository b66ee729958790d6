/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package layers

import (
	"fmt"
)

// ErrBadMagic returned when a datagram does not start with AdvatekMagic, i.e. it is not a packet of this protocol
type ErrBadMagic struct {
	Got []byte
}

func (e ErrBadMagic) Error() string {
	return fmt.Sprintf("Wrong magic %q. Must be %q", e.Got, AdvatekMagic[:])
}

// ErrTruncated returned when a field reaches past the end of the datagram.
// Index is the element of a repeated field or -1 for scalar fields.
type ErrTruncated struct {
	Field  string
	Index  int
	Offset int
	Need   int
	Have   int
}

func (e ErrTruncated) Error() string {
	field := e.Field
	if e.Index >= 0 {
		field = fmt.Sprintf("%s[%d]", e.Field, e.Index)
	}
	return fmt.Sprintf("Packet truncated while reading %s at offset %d: need %d bytes, have %d", field, e.Offset, e.Need, e.Have)
}
