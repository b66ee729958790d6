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

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "warning")
	defer Init(&bytes.Buffer{}, "info")

	Info("hidden %d", 1)
	Warning("shown %d", 2)
	Sync()
	assert.NotContains(t, buf.String(), "hidden 1")
	assert.Contains(t, buf.String(), "shown 2")

	require.NoError(t, SetLevel("DEBUG"))
	Debug("debug %s", "line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestWrongLevel(t *testing.T) {
	err := SetLevel("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), HelpLevels)
}

func TestWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(buf, "info")
	defer Init(&bytes.Buffer{}, "info")

	_, err := Writer().Write([]byte("GET /api/devices 200\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "GET /api/devices 200")
}
