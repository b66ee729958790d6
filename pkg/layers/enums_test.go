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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorOrder(t *testing.T) {
	assert.Equal(t, "RGB / RGBW", ColorOrder(0).String())
	assert.Equal(t, "GRB / GRBW", ColorOrder(2).String())
	assert.Equal(t, "WBGR", ColorOrder(23).String())
	assert.Equal(t, Unknown, ColorOrder(24).String())
	assert.False(t, ColorOrder(99).Known())

	order, err := ParseColorOrder("BGR / BGWR")
	require.NoError(t, err)
	assert.Equal(t, ColorOrder(5), order)

	_, err = ParseColorOrder("XYZ")
	assert.Equal(t, ErrUnknownSymbol{Table: "color order", Symbol: "XYZ"}, err)
}

func TestEnumNames(t *testing.T) {
	assert.Equal(t, "RGB Only", DriverTypeRGB.String())
	assert.Equal(t, "Either", DriverTypeEither.String())
	assert.Equal(t, Unknown, DriverType(3).String())

	assert.Equal(t, "Fixed single speed", DriverSpeedFixed.String())
	assert.Equal(t, "Adjustable", DriverSpeedAdjustable.String())
	assert.Equal(t, Unknown, DriverSpeed(5).String())

	assert.Equal(t, "Live Data", TestModeLiveData.String())
	assert.Equal(t, "Single Pixel", TestModeSinglePixel.String())
	assert.Equal(t, Unknown, TestMode(9).String())

	assert.Equal(t, "OpPollReply", OpPollReply.String())
	assert.Equal(t, "OpVisualIdent", OpVisualIdent.String())
}

func TestZeroOrNonZeroEnums(t *testing.T) {
	assert.Equal(t, "Normal", Direction(0).String())
	assert.Equal(t, "Reversed", Direction(7).String())
	assert.Equal(t, "sACN", OutputProtocol(0).String())
	assert.Equal(t, "Art-Net", OutputProtocol(2).String())
	assert.Equal(t, "RGB", ChannelMode(0).String())
	assert.Equal(t, "RGBW", ChannelMode(255).String())
}

func TestParseEnums(t *testing.T) {
	speed, err := ParseDriverSpeed("Fast only")
	require.NoError(t, err)
	assert.Equal(t, DriverSpeedFast, speed)

	driverType, err := ParseDriverType("RGBW Only")
	require.NoError(t, err)
	assert.Equal(t, DriverTypeRGBW, driverType)

	mode, err := ParseTestMode("Color Fade")
	require.NoError(t, err)
	assert.Equal(t, TestModeColorFade, mode)

	_, err = ParseTestMode(Unknown)
	assert.Error(t, err)

	op, err := ParseOpCode("OpTestSet")
	require.NoError(t, err)
	assert.Equal(t, OpTestSet, op)

	op, err = ParseOpCode("Unknown(4660)")
	require.NoError(t, err)
	assert.Equal(t, OpCode(0x1234), op)

	_, err = ParseOpCode("OpNothing")
	assert.Error(t, err)
}

func TestEnumTextKeepsUnknownCodes(t *testing.T) {
	type record struct {
		Order ColorOrder  `json:"order"`
		Speed DriverSpeed `json:"speed"`
		Mode  TestMode    `json:"mode"`
		Op    OpCode      `json:"op"`
	}
	in := record{Order: 99, Speed: 17, Mode: TestModeRed, Op: 0x00ff}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":"Unknown(99)","speed":"Unknown(17)","mode":"Red","op":"Unknown(255)"}`, string(data))

	out := record{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
