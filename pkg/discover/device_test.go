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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestDeviceSource(t *testing.T) {
	dd := NewDevice(newReply("aa:bb:cc:dd:ee:ff", "PixLite 16"))
	dd.SetSource(&net.UDPAddr{IP: net.IPv4(192, 168, 0, 50), Port: 49150})
	now := time.Now()
	dd.SetTimestamp(now)

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", dd.Key())
	assert.Equal(t, "192.168.0.50", dd.Address.String())
	assert.Equal(t, uint16(49150), dd.Port)
	assert.Equal(t, now.UnixMilli(), dd.LastSeen().UnixMilli())
	assert.True(t, dd.Online(now.Add(10*time.Second), 15*time.Second))
	assert.False(t, dd.Online(now.Add(20*time.Second), 15*time.Second))
}

func TestDeviceKeyWithoutReply(t *testing.T) {
	assert.Equal(t, "", (&Device{}).Key())
}

func TestDeviceYaml(t *testing.T) {
	dd := NewDevice(newReply("aa:bb:cc:dd:ee:ff", "PixLite 16"))
	dd.SetSource(&net.UDPAddr{IP: net.IPv4(192, 168, 0, 50), Port: 49150})
	dd.SetTimestamp(time.Now())
	dd.SessionID = "s"

	data, err := yaml.Marshal(dd)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mac: aa:bb:cc:dd:ee:ff")
	assert.Contains(t, string(data), "model: PixLite 16")
	assert.Contains(t, string(data), "address: 192.168.0.50")

	decoded := &Device{}
	require.NoError(t, yaml.Unmarshal(data, decoded))
	assert.Equal(t, dd.Key(), decoded.Key())
	assert.Equal(t, dd.Model, decoded.Model)
	assert.Equal(t, dd.Timestamp, decoded.Timestamp)
	assert.True(t, dd.Address.Equal(decoded.Address))
	assert.Contains(t, dd.String(), "nickname: bench")
}
