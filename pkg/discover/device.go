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

package discover

import (
	"fmt"
	"net"
	"time"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-advatek/pkg/layers"
	"jinr.ru/greenlab/go-advatek/pkg/log"
	"jinr.ru/greenlab/go-advatek/pkg/srv"
)

// Device is a poll reply together with where and when it was received
type Device struct {
	*layers.PollReply
	Address   net.IP `json:"address"`
	Port      uint16 `json:"port"`
	Timestamp uint64 `json:"timestamp,omitempty"`
	SessionID string `json:"sessionID,omitempty"`
}

func NewDevice(reply *layers.PollReply) *Device {
	return &Device{PollReply: reply}
}

// Key is the MAC address the device is stored and deduplicated by
func (d *Device) Key() string {
	if d.PollReply == nil {
		return ""
	}
	return d.MAC.String()
}

func (d *Device) SetSource(udpAddr *net.UDPAddr) {
	d.Address = udpAddr.IP
	d.Port = uint16(udpAddr.Port)
}

func (d *Device) SetTimestamp(t time.Time) {
	d.Timestamp = srv.Millis(t)
}

// LastSeen returns the time the reply was received
func (d *Device) LastSeen() time.Time {
	return time.UnixMilli(int64(d.Timestamp))
}

// Online is false when nothing was heard from the device for longer than offlineAfter
func (d *Device) Online(now time.Time, offlineAfter time.Duration) bool {
	return now.Sub(d.LastSeen()) <= offlineAfter
}

func (d *Device) String() string {
	result, err := yaml.Marshal(d)
	if err != nil {
		log.Error("Error occured while marshaling device, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}
