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
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeReply(t *testing.T, data []byte) *PollReply {
	t.Helper()
	parsed, err := Decode(data)
	require.NoError(t, err)
	reply, ok := parsed.(*PollReplyPacket)
	require.True(t, ok, "expected a poll reply, got %T", parsed)
	assert.Equal(t, OpPollReply, reply.Header().OpCode)
	return reply.PollReply
}

func TestEncodePoll(t *testing.T) {
	assert.Equal(t,
		[]byte{0x41, 0x64, 0x76, 0x61, 0x74, 0x65, 0x63, 0x68, 0x00, 0x00, 0x01, 0x08},
		EncodePoll())
}

func TestDecodePoll(t *testing.T) {
	parsed, err := Decode(EncodePoll())
	require.NoError(t, err)
	frame, ok := parsed.(*FramePacket)
	require.True(t, ok)
	assert.Equal(t, Frame{OpCode: OpPoll, ProtocolVersion: 8}, frame.Header())
}

func TestDecodeShortBuffer(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("Adva"),
		[]byte("Advatech\x00\x00\x01"),
		// wrong magic but too short, truncation wins
		[]byte("XXXXXXXX\x00"),
	} {
		_, err := Decode(data)
		var truncated ErrTruncated
		require.True(t, errors.As(err, &truncated), "data %q: %v", data, err)
		assert.Equal(t, "header", truncated.Field)
		assert.Equal(t, AdvatekHeaderLen, truncated.Need)
		assert.Equal(t, len(data), truncated.Have)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	data := append([]byte("Advatekk"), 0, 0, 2, 8)
	_, err := Decode(data)
	var badMagic ErrBadMagic
	require.True(t, errors.As(err, &badMagic), "%v", err)
	assert.Equal(t, []byte("Advatekk"), badMagic.Got)
}

func TestDecodeUnknownOpCode(t *testing.T) {
	data := newBuilder(OpCode(0x1234)).u8("junk", 1, 2, 3).buf
	parsed, err := Decode(data)
	require.NoError(t, err)
	frame, ok := parsed.(*FramePacket)
	require.True(t, ok)
	assert.Equal(t, OpCode(0x1234), frame.OpCode)
	assert.False(t, frame.OpCode.Known())
	assert.Equal(t, Unknown, frame.OpCode.String())

	text, err := frame.OpCode.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Unknown(4660)", string(text))
}

func TestDecodeKnownOpCodesWithoutBody(t *testing.T) {
	for _, op := range []OpCode{OpPoll, OpConfig, OpBootload, OpNetwork, OpTestSet, OpTestAnnounce, OpVisualIdent} {
		parsed, err := Decode(newBuilder(op).buf)
		require.NoError(t, err, op.String())
		assert.IsType(t, &FramePacket{}, parsed, op.String())
		assert.True(t, op.Known())
	}
}

func TestDecodePollReply(t *testing.T) {
	reply := decodeReply(t, fullReply().buf)

	assert.Equal(t, uint8(8), reply.VersionCurrent)
	assert.Equal(t, "00:11:22:33:44:55", reply.MAC.String())
	assert.Equal(t, "PX100", reply.Model)
	assert.InDelta(t, 1.2, reply.HwRev, 1e-9)
	assert.Equal(t, "2.3.4", reply.AssistantSwRev)
	assert.Equal(t, "FW-1.0", reply.Firmware)

	assert.True(t, reply.IP.Equal(net.IPv4(192, 168, 1, 50)))
	assert.True(t, reply.Subnet.Equal(net.IPv4(255, 255, 255, 0)))
	assert.True(t, reply.DHCP)
	assert.True(t, reply.StaticIP.Equal(net.IPv4(10, 0, 0, 50)))
	assert.Equal(t, "Art-Net", reply.Protocol.String())
	assert.False(t, reply.HoldLast)

	assert.False(t, reply.SimpleConfig)
	assert.Equal(t, uint16(680), reply.MaxPixelsPerOutput)
	require.Len(t, reply.Outputs, 3)
	assert.Equal(t, Output{
		Pixels: 170, Universe: 2, StartChannel: 1, NullPixels: 1, ZigZag: 0,
		Direction: DirectionReversed, ColorOrder: 99, Grouping: 1, Brightness: 50,
	}, reply.Outputs[1])
	assert.Equal(t, "GRB / GRBW", reply.Outputs[0].ColorOrder.String())
	assert.Equal(t, Unknown, reply.Outputs[1].ColorOrder.String())
	assert.Equal(t, uint16(5), reply.Outputs[2].ZigZag)
	assert.Equal(t, uint8(255), reply.Outputs[2].Brightness)

	assert.Equal(t, []DMXOutput{{Enabled: true, Universe: 10}, {Enabled: false, Universe: 11}}, reply.DMXOutputs)
	assert.True(t, reply.SACNAllowed)
	assert.True(t, reply.ArtNetAllowed)
	require.Len(t, reply.Drivers, 2)
	assert.Equal(t, Driver{Type: DriverTypeRGB, Speed: DriverSpeedSlow, Expandable: false, Name: "DRVA"}, reply.Drivers[0])
	assert.Equal(t, Driver{Type: DriverTypeEither, Speed: DriverSpeedAdjustable, Expandable: true, Name: "DRVB"}, reply.Drivers[1])
	assert.Equal(t, uint8(1), reply.CurrentDriverIndex)
	assert.Equal(t, "DRVB", reply.CurrentDriver)
	assert.Equal(t, ChannelModeRGBW, reply.CurrentDriverType)
	assert.Equal(t, "Adjustable", reply.CurrentDriverSpeed.String())
	assert.True(t, reply.CurrentDriverExpanded)

	assert.InDeltaSlice(t, []float64{2.2, 2.2, 2.2, 1.0}, reply.Gamma[:], 1e-9)
	assert.Equal(t, "Stage Left", reply.Nickname)
	assert.InDelta(t, 30.0, reply.Temperature, 1e-9)
	assert.Equal(t, uint8(60), reply.MaxTargetTemp)
	assert.InDeltaSlice(t, []float64{12.0, 24.0}, reply.PowerBankVoltages, 1e-9)
	assert.Equal(t, "Set Color", reply.TestMode.String())
	assert.Equal(t, [4]uint8{255, 0, 128, 0}, reply.TestColor)
	assert.Equal(t, uint8(3), reply.TestOutput)
	assert.Equal(t, uint16(42), reply.TestPixel)
}

func TestDecodePollReplyTruncated(t *testing.T) {
	b := fullReply()
	for _, tc := range []struct {
		field string
		index int
	}{
		{"versionCurrent", -1},
		{"mac", -1},
		{"model", -1},
		{"firmware", -1},
		{"ip", -1},
		{"holdLast", -1},
		{"maxPixPerOutput", -1},
		{"numOutputs", -1},
		{"outputPixels", 2},
		{"outputUniverse", 2},
		{"outputChannel", 2},
		{"outputNull", 2},
		{"outputZig", 2},
		{"outputReverse", 2},
		{"colorOrder", 2},
		{"outputGrouping", 2},
		{"outputBrightness", 2},
		{"numDMXOut", -1},
		{"protocolsAllowed", -1},
		{"dmxEnabled", 1},
		{"dmxUniverse", 1},
		{"numDrivers", -1},
		{"driverNameLength", -1},
		{"driverType", 1},
		{"driverSpeed", 1},
		{"driverExpandable", 1},
		{"driverName", 1},
		{"currentDriverInt", -1},
		{"currentDriverExpanded", -1},
		{"gamma", 3},
		{"nickname", -1},
		{"temperature", -1},
		{"numPowerBanks", -1},
		{"powerBankVoltage", 1},
		{"testMode", -1},
		{"testColor", 3},
		{"testOutputNum", -1},
		{"testPixelNum", -1},
	} {
		t.Run(tc.field, func(t *testing.T) {
			end, ok := b.ends[tc.field]
			require.True(t, ok)
			data := b.buf[:end-1]
			_, err := Decode(data)
			var truncated ErrTruncated
			require.True(t, errors.As(err, &truncated), "%v", err)
			assert.Equal(t, tc.field, truncated.Field)
			assert.Equal(t, tc.index, truncated.Index)
			assert.Equal(t, len(data), truncated.Offset+truncated.Have)
		})
	}
}

func TestDecodePollReplyEmptyBody(t *testing.T) {
	_, err := Decode(newBuilder(OpPollReply).buf)
	var truncated ErrTruncated
	require.True(t, errors.As(err, &truncated), "%v", err)
	assert.Equal(t, "versionCurrent", truncated.Field)
	assert.Equal(t, AdvatekHeaderLen, truncated.Offset)
}

func TestDecodePollReplyTrailingBytes(t *testing.T) {
	data := append(fullReply().buf, 0xde, 0xad, 0xbe, 0xef)
	reply := decodeReply(t, data)
	assert.Equal(t, uint16(42), reply.TestPixel)
}

func TestDecodePollReplyNoOutputs(t *testing.T) {
	data := newBuilder(OpPollReply).
		u8("versionCurrent", 8).
		raw("mac", make([]byte, 6)).
		u8("lenModel", 0).
		u8("hwRev", 0).
		raw("assistantSwRev", []byte{0, 0, 0}).
		u8("lenFirmware", 0).
		u8("brand", 0).
		raw("network", make([]byte, 4+4+1+4+4+1+1)).
		u8("simpleConfig", 1).
		u16("maxPixPerOutput", 0).
		u8("numOutputs", 0).
		u8("numDMXOut", 0).
		u8("protocolsAllowed", 0).
		u8("numDrivers", 0).
		u8("driverNameLength", 0).
		// current driver index points past the empty driver table
		u8("currentDriverInt", 5).
		u8("currentDriver", 0, 0, 0).
		u8("gamma", 0, 0, 0, 0).
		padded("nickname", NicknameLen, "").
		u16("temperature", 0).
		u8("maxTargetTemp", 0).
		u8("numPowerBanks", 0).
		u8("testMode", 42).
		u8("testColor", 0, 0, 0, 0).
		u8("testOutputNum", 0).
		u16("testPixelNum", 0).
		buf
	reply := decodeReply(t, data)
	assert.Empty(t, reply.Outputs)
	assert.Empty(t, reply.Drivers)
	assert.Equal(t, "", reply.CurrentDriver)
	assert.Equal(t, "", reply.Model)
	assert.Equal(t, Unknown, reply.TestMode.String())
	assert.False(t, reply.SACNAllowed)
	assert.True(t, reply.SimpleConfig)
}

func TestDecodeFlagOnlyOneIsTrue(t *testing.T) {
	b := fullReply()
	data := append([]byte(nil), b.buf...)
	data[b.ends["dhcp"]-1] = 2
	reply := decodeReply(t, data)
	assert.False(t, reply.DHCP)
}

func TestDecodeNulInsideString(t *testing.T) {
	b := fullReply()
	data := append([]byte(nil), b.buf...)
	// "PX100\0\0\0" becomes "PX\x0000\0\0\0"
	data[b.ends["model"]-6] = 0
	reply := decodeReply(t, data)
	assert.Equal(t, "PX\x0000", reply.Model)
}

func TestGopacketPath(t *testing.T) {
	data := fullReply().buf
	packet := gopacket.NewPacket(data, AdvatekLayerType, gopacket.Default)
	require.Nil(t, packet.ErrorLayer())
	require.NotNil(t, packet.Layer(PollReplyLayerType))

	parsed, err := FromPacket(packet)
	require.NoError(t, err)
	direct, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, direct, parsed)
}

func TestGopacketPathTruncated(t *testing.T) {
	b := fullReply()
	packet := gopacket.NewPacket(b.buf[:b.ends["colorOrder"]-1], AdvatekLayerType, gopacket.Default)
	require.NotNil(t, packet.ErrorLayer())

	_, err := FromPacket(packet)
	var truncated ErrTruncated
	require.True(t, errors.As(err, &truncated), "%v", err)
	assert.Equal(t, "colorOrder", truncated.Field)
}

func TestGopacketPathEmptyReply(t *testing.T) {
	packet := gopacket.NewPacket(newBuilder(OpPollReply).buf, AdvatekLayerType, gopacket.Default)
	_, err := FromPacket(packet)
	var truncated ErrTruncated
	require.True(t, errors.As(err, &truncated), "%v", err)
	assert.Equal(t, "versionCurrent", truncated.Field)
}

func TestGopacketPathBadMagic(t *testing.T) {
	packet := gopacket.NewPacket([]byte("not an advatek packet"), AdvatekLayerType, gopacket.Default)
	_, err := FromPacket(packet)
	var badMagic ErrBadMagic
	assert.True(t, errors.As(err, &badMagic), "%v", err)
}

func TestSerializeRoundTrip(t *testing.T) {
	reply := decodeReply(t, fullReply().buf)

	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{},
		&AdvatekLayer{Frame: Frame{OpCode: OpPollReply, ProtocolVersion: AdvatekProtocolVersion}},
		&PollReplyLayer{PollReply: *reply},
	)
	require.NoError(t, err)

	again := decodeReply(t, buf.Bytes())
	assert.Equal(t, reply, again)
}

func TestPollReplyJSON(t *testing.T) {
	reply := decodeReply(t, fullReply().buf)
	data, err := json.Marshal(reply)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "00:11:22:33:44:55", fields["mac"])
	assert.Equal(t, "DRVB", fields["currentDriver"])
	assert.Equal(t, float64(1), fields["currentDriverInt"])
	assert.Equal(t, "Art-Net", fields["protocol"])
	outputs := fields["outputs"].([]interface{})
	assert.Equal(t, "Unknown(99)", outputs[1].(map[string]interface{})["colorOrder"])

	decoded := &PollReply{}
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, reply, decoded)
}
