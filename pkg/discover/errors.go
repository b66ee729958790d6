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
)

// ErrDeviceNotFound returned when there is no device with the given MAC address
type ErrDeviceNotFound struct {
	Mac string
}

func (e ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("Device not found: %s", e.Mac)
}

// ErrNoBroadcast returned when the discover interface has no IPv4 address to derive a broadcast address from
type ErrNoBroadcast struct {
	Interface string
}

func (e ErrNoBroadcast) Error() string {
	return fmt.Sprintf("No IPv4 broadcast address on interface: %s", e.Interface)
}
