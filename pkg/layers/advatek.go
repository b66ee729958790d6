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
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

func init() {
	initUnknownOpCodes()
	initActualOpCodes()
}

const (
	// AdvatekLayerNum identifies the frame layer
	AdvatekLayerNum = 1990
	// AdvatekHeaderLen is the size of the frame header every packet starts with
	AdvatekHeaderLen = 12
	// AdvatekProtocolVersion is the protocol version we put into outgoing packets
	AdvatekProtocolVersion = 8
	// AdvatekPort is the UDP port devices listen and reply on
	AdvatekPort = 49150
)

// AdvatekMagic is the literal every packet begins with
var AdvatekMagic = [8]byte{'A', 'd', 'v', 'a', 't', 'e', 'c', 'h'}

type OpCode uint16

const (
	OpPoll         OpCode = 0x0001
	OpPollReply    OpCode = 0x0002
	OpConfig       OpCode = 0x0005
	OpBootload     OpCode = 0x0006
	OpNetwork      OpCode = 0x0007
	OpTestSet      OpCode = 0x0008
	OpTestAnnounce OpCode = 0x0009
	OpVisualIdent  OpCode = 0x000a
)

var OpCodeMetadata [65536]layers.EnumMetadata

func initUnknownOpCodes() {
	for i := 0; i < 65536; i++ {
		OpCodeMetadata[i] = layers.EnumMetadata{
			DecodeWith: gopacket.LayerTypePayload,
			Name:       Unknown,
			LayerType:  gopacket.LayerTypePayload,
		}
	}
}

func initActualOpCodes() {
	payload := layers.EnumMetadata{DecodeWith: gopacket.LayerTypePayload, LayerType: gopacket.LayerTypePayload}
	for op, name := range map[OpCode]string{
		OpPoll:         "OpPoll",
		OpConfig:       "OpConfig",
		OpBootload:     "OpBootload",
		OpNetwork:      "OpNetwork",
		OpTestSet:      "OpTestSet",
		OpTestAnnounce: "OpTestAnnounce",
		OpVisualIdent:  "OpVisualIdent",
	} {
		OpCodeMetadata[op] = payload
		OpCodeMetadata[op].Name = name
	}
	OpCodeMetadata[OpPollReply] = layers.EnumMetadata{
		DecodeWith: gopacket.DecodeFunc(decodePollReplyLayer),
		Name:       "OpPollReply",
		LayerType:  PollReplyLayerType,
	}
}

// LayerType returns the type of the layer carried after the frame header
func (op OpCode) LayerType() gopacket.LayerType {
	return OpCodeMetadata[op].LayerType
}

// String returns OpCodeMetadata.Name
func (op OpCode) String() string {
	return OpCodeMetadata[op].Name
}

// Known is false for opcodes that are not part of the protocol
func (op OpCode) Known() bool {
	return op.String() != Unknown
}

func (op OpCode) MarshalText() ([]byte, error) {
	return marshalSymbol(op.String(), int(op)), nil
}

func (op *OpCode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpCode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ParseOpCode accepts both the opcode names and the Unknown(<code>) form
func ParseOpCode(name string) (OpCode, error) {
	for i := range OpCodeMetadata {
		if OpCodeMetadata[i].Name != Unknown && OpCodeMetadata[i].Name == name {
			return OpCode(i), nil
		}
	}
	var code int
	if _, err := fmt.Sscanf(name, Unknown+"(%d)", &code); err == nil && code >= 0 && code < 65536 {
		return OpCode(code), nil
	}
	return 0, ErrUnknownSymbol{Table: "opcode", Symbol: name}
}

// Frame is the header shared by all packets of the protocol
type Frame struct {
	OpCode          OpCode `json:"opcode"`
	ProtocolVersion uint8  `json:"protocolVersion"`
}

type AdvatekLayer struct {
	layers.BaseLayer
	Frame
}

var AdvatekLayerType = gopacket.RegisterLayerType(AdvatekLayerNum,
	gopacket.LayerTypeMetadata{Name: "AdvatekLayerType", Decoder: gopacket.DecodeFunc(decodeAdvatekLayer)})

func (a *AdvatekLayer) LayerType() gopacket.LayerType {
	return AdvatekLayerType
}

func (a *AdvatekLayer) CanDecode() gopacket.LayerClass {
	return AdvatekLayerType
}

// Serialize writes the frame header to the first AdvatekHeaderLen bytes of the buffer
func (a *AdvatekLayer) Serialize(buf []byte) {
	copy(buf[0:8], AdvatekMagic[:])
	buf[8] = 0
	binary.BigEndian.PutUint16(buf[9:11], uint16(a.OpCode))
	buf[11] = a.ProtocolVersion
}

// SerializeTo serializes the frame header into bytes and prepends them to the SerializeBuffer
func (a *AdvatekLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(AdvatekHeaderLen)
	if err != nil {
		return err
	}
	a.Serialize(bytes)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as an Advatek frame
func (a *AdvatekLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < AdvatekHeaderLen {
		df.SetTruncated()
		return ErrTruncated{Field: "header", Index: -1, Offset: 0, Need: AdvatekHeaderLen, Have: len(data)}
	}
	if string(data[0:8]) != string(AdvatekMagic[:]) {
		return ErrBadMagic{Got: append([]byte(nil), data[0:8]...)}
	}

	a.BaseLayer = layers.BaseLayer{
		Contents: data[:AdvatekHeaderLen],
		Payload:  data[AdvatekHeaderLen:],
	}
	// data[8] is reserved
	a.OpCode = OpCode(binary.BigEndian.Uint16(data[9:11]))
	a.ProtocolVersion = data[11]
	return nil
}

func (a *AdvatekLayer) NextLayerType() gopacket.LayerType {
	return a.OpCode.LayerType()
}

func decodeAdvatekLayer(data []byte, p gopacket.PacketBuilder) error {
	a := &AdvatekLayer{}
	err := a.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(a)
	return p.NextDecoder(OpCodeMetadata[a.OpCode].DecodeWith)
}
