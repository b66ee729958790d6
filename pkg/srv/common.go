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

package srv

import (
	"net"
	"time"

	"github.com/google/gopacket"
)

// MaxDatagramSize is large enough for any UDP payload
const MaxDatagramSize = 65536

type InPacket struct {
	Data []byte
	gopacket.CaptureInfo
}

// NewInPacket copies a received datagram and keeps the sender in the capture ancillary data
func NewInPacket(data []byte, from *net.UDPAddr, ifaceIndex int) InPacket {
	packet := InPacket{
		Data: make([]byte, len(data)),
		CaptureInfo: gopacket.CaptureInfo{
			Length:         len(data),
			CaptureLength:  len(data),
			InterfaceIndex: ifaceIndex,
			Timestamp:      time.Now(),
			AncillaryData:  []interface{}{from},
		},
	}
	copy(packet.Data, data)
	return packet
}

// GetAddrPort returns the UDPAddr of the device that sent the packet
func GetAddrPort(packet gopacket.Packet) (*net.UDPAddr, error) {
	meta := packet.Metadata()
	if len(meta.CaptureInfo.AncillaryData) >= 1 {
		ancillary := meta.CaptureInfo.AncillaryData[0]
		udpAddr, ok := ancillary.(*net.UDPAddr)
		if !ok {
			return nil, ErrGetAddr{}
		}
		return udpAddr, nil
	}
	return nil, ErrGetAddr{}
}

// Now returns unix time in milliseconds
func Now() uint64 {
	return Millis(time.Now())
}

func Millis(t time.Time) uint64 {
	return uint64(t.UnixNano()) / uint64(time.Millisecond)
}
