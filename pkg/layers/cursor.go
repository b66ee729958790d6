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
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// cursor walks a buffer front to back. The reply body carries no offsets, the
// position of every field is the sum of the lengths of all fields before it.
//
// The first read that runs past the end records an ErrTruncated naming the
// field and leaves the cursor where it was. Every later read is a no-op that
// returns a zero value, so a group decoder checks Err once when it is done.
// base is added to offsets reported in errors so they point into the datagram.
type cursor struct {
	data []byte
	pos  int
	base int
	err  error
}

func newCursor(data []byte, base int) *cursor {
	return &cursor{data: data, base: base}
}

// Offset returns the position of the next unread byte relative to the datagram
func (c *cursor) Offset() int {
	return c.base + c.pos
}

func (c *cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Err returns the first error met by the cursor
func (c *cursor) Err() error {
	return c.err
}

// take returns the next n bytes and advances the cursor
func (c *cursor) take(field string, index, n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.Remaining() < n {
		c.err = ErrTruncated{Field: field, Index: index, Offset: c.Offset(), Need: n, Have: c.Remaining()}
		return nil
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) bytes(field string, index, n int) []byte {
	b := c.take(field, index, n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (c *cursor) uint8(field string, index int) uint8 {
	b := c.take(field, index, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (c *cursor) uint16(field string, index int) uint16 {
	b := c.take(field, index, 2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// flag reads a byte that means true only when it is exactly 1
func (c *cursor) flag(field string, index int) bool {
	return c.uint8(field, index) == 1
}

// tenths reads a byte holding a value multiplied by ten
func (c *cursor) tenths(field string, index int) float64 {
	return float64(c.uint8(field, index)) / 10
}

// tenths16 reads a 16-bit word holding a value multiplied by ten
func (c *cursor) tenths16(field string, index int) float64 {
	return float64(c.uint16(field, index)) / 10
}

func (c *cursor) ipv4(field string) net.IP {
	b := c.take(field, -1, net.IPv4len)
	if b == nil {
		return nil
	}
	return net.IPv4(b[0], b[1], b[2], b[3])
}

func (c *cursor) mac(field string) Mac {
	return Mac{HardwareAddr: c.bytes(field, -1, 6)}
}

// semver reads three bytes and joins them as major.minor.patch
func (c *cursor) semver(field string) string {
	b := c.take(field, -1, 3)
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", b[0], b[1], b[2])
}

// text reads a fixed size string and strips the NUL padding at its end only
func (c *cursor) text(field string, index, n int) string {
	return string(bytes.TrimRight(c.take(field, index, n), "\x00"))
}

// prefixedText reads a length byte followed by a string of that length
func (c *cursor) prefixedText(lenField, field string) string {
	n := c.uint8(lenField, -1)
	return c.text(field, -1, int(n))
}
