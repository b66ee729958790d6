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
	"encoding/binary"
)

// replyBuilder assembles a datagram field by field and remembers the offset
// right after the last byte of every named field
type replyBuilder struct {
	buf  []byte
	ends map[string]int
}

func newBuilder(op OpCode) *replyBuilder {
	b := &replyBuilder{ends: map[string]int{}}
	b.buf = append(b.buf, AdvatekMagic[:]...)
	b.buf = append(b.buf, 0)
	b.buf = binary.BigEndian.AppendUint16(b.buf, uint16(op))
	b.buf = append(b.buf, AdvatekProtocolVersion)
	return b
}

func (b *replyBuilder) u8(field string, values ...uint8) *replyBuilder {
	b.buf = append(b.buf, values...)
	b.ends[field] = len(b.buf)
	return b
}

func (b *replyBuilder) u16(field string, values ...uint16) *replyBuilder {
	for _, v := range values {
		b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	}
	b.ends[field] = len(b.buf)
	return b
}

func (b *replyBuilder) raw(field string, data []byte) *replyBuilder {
	return b.u8(field, data...)
}

func (b *replyBuilder) padded(field string, n int, names ...string) *replyBuilder {
	for _, name := range names {
		entry := make([]byte, n)
		copy(entry, name)
		b.buf = append(b.buf, entry...)
	}
	b.ends[field] = len(b.buf)
	return b
}

// fullReply is a reply of a device with three outputs, two DMX outputs,
// two drivers and two power banks
func fullReply() *replyBuilder {
	return newBuilder(OpPollReply).
		// identity
		u8("versionCurrent", 8).
		raw("mac", []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}).
		u8("lenModel", 8).
		raw("model", []byte("PX100\x00\x00\x00")).
		u8("hwRev", 12).
		raw("assistantSwRev", []byte{2, 3, 4}).
		u8("lenFirmware", 6).
		raw("firmware", []byte("FW-1.0")).
		u8("brand", 0).
		// network
		raw("ip", []byte{192, 168, 1, 50}).
		raw("subnet", []byte{255, 255, 255, 0}).
		u8("dhcp", 1).
		raw("staticIP", []byte{10, 0, 0, 50}).
		raw("staticSubnet", []byte{255, 0, 0, 0}).
		u8("protocol", 1).
		u8("holdLast", 0).
		// outputs
		u8("simpleConfig", 0).
		u16("maxPixPerOutput", 680).
		u8("numOutputs", 3).
		u16("outputPixels", 170, 170, 100).
		u16("outputUniverse", 1, 2, 3).
		u16("outputChannel", 1, 1, 1).
		u8("outputNull", 0, 1, 2).
		u16("outputZig", 0, 0, 5).
		u8("outputReverse", 0, 1, 0).
		u8("colorOrder", 2, 99, 0).
		u16("outputGrouping", 1, 1, 2).
		u8("outputBrightness", 100, 50, 255).
		// dmx and drivers
		u8("numDMXOut", 2).
		u8("protocolsAllowed", 0x03).
		u8("dmxEnabled", 1, 0).
		u16("dmxUniverse", 10, 11).
		u8("numDrivers", 2).
		u8("driverNameLength", 8).
		u8("driverType", 0, 2).
		u8("driverSpeed", 1, 4).
		u8("driverExpandable", 0, 1).
		padded("driverName", 8, "DRVA", "DRVB").
		u8("currentDriverInt", 1).
		u8("currentDriverType", 1).
		u8("currentDriverSpeed", 4).
		u8("currentDriverExpanded", 1).
		// environment
		u8("gamma", 22, 22, 22, 10).
		padded("nickname", NicknameLen, "Stage Left").
		u16("temperature", 0x012C).
		u8("maxTargetTemp", 60).
		u8("numPowerBanks", 2).
		u16("powerBankVoltage", 120, 240).
		u8("testMode", 6).
		u8("testColor", 255, 0, 128, 0).
		u8("testOutputNum", 3).
		u16("testPixelNum", 42)
}
