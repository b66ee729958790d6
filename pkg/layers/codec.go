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
	"errors"

	"github.com/google/gopacket"
)

// ParsedPacket is either a *FramePacket or a *PollReplyPacket
type ParsedPacket interface {
	Header() Frame
	parsedPacket()
}

// FramePacket is a valid packet whose body is not decoded, i.e. any opcode but OpPollReply
type FramePacket struct {
	Frame
}

func (p *FramePacket) Header() Frame {
	return p.Frame
}

func (*FramePacket) parsedPacket() {}

type PollReplyPacket struct {
	Frame
	*PollReply
}

func (p *PollReplyPacket) Header() Frame {
	return p.Frame
}

func (*PollReplyPacket) parsedPacket() {}

// EncodePoll returns the poll request that is broadcast to discover devices
func EncodePoll() []byte {
	buf := make([]byte, AdvatekHeaderLen)
	poll := &AdvatekLayer{Frame: Frame{OpCode: OpPoll, ProtocolVersion: AdvatekProtocolVersion}}
	poll.Serialize(buf)
	return buf
}

// Decode decodes one datagram. Only OpPollReply bodies are decoded, all other
// opcodes, including unknown ones, give a FramePacket. The returned error is
// either ErrBadMagic or ErrTruncated.
func Decode(data []byte) (ParsedPacket, error) {
	frame := &AdvatekLayer{}
	if err := frame.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	if frame.OpCode != OpPollReply {
		return &FramePacket{Frame: frame.Frame}, nil
	}
	reply, err := DecodePollReply(frame.Payload)
	if err != nil {
		return nil, err
	}
	return &PollReplyPacket{Frame: frame.Frame, PollReply: reply}, nil
}

// FromPacket converts a packet decoded by gopacket starting at AdvatekLayerType
func FromPacket(packet gopacket.Packet) (ParsedPacket, error) {
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, errLayer.Error()
	}
	frameLayer, ok := packet.Layer(AdvatekLayerType).(*AdvatekLayer)
	if !ok {
		return nil, errors.New("Not an Advatek packet")
	}
	if frameLayer.OpCode != OpPollReply {
		return &FramePacket{Frame: frameLayer.Frame}, nil
	}
	replyLayer, ok := packet.Layer(PollReplyLayerType).(*PollReplyLayer)
	if !ok {
		// empty body
		return nil, ErrTruncated{Field: "versionCurrent", Index: -1, Offset: AdvatekHeaderLen, Need: 1, Have: 0}
	}
	reply := replyLayer.PollReply
	return &PollReplyPacket{Frame: frameLayer.Frame, PollReply: &reply}, nil
}
