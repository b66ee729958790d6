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
	"fmt"
	"strconv"
	"strings"
)

// Unknown is the symbol of every code that is missing from a lookup table.
const Unknown = "Unknown"

// ErrUnknownSymbol returned by the Parse* functions when a name is not in the table
type ErrUnknownSymbol struct {
	Table  string
	Symbol string
}

func (e ErrUnknownSymbol) Error() string {
	return fmt.Sprintf("Unknown %s: %q", e.Table, e.Symbol)
}

func lookupName(names []string, code int) string {
	if code >= 0 && code < len(names) && names[code] != "" {
		return names[code]
	}
	return Unknown
}

func lookupCode(table string, names []string, symbol string) (int, error) {
	for code, name := range names {
		if name != "" && name == symbol {
			return code, nil
		}
	}
	return 0, ErrUnknownSymbol{Table: table, Symbol: symbol}
}

// marshalSymbol renders unknown codes as Unknown(<code>) so the raw value survives a text round trip
func marshalSymbol(name string, code int) []byte {
	if name == Unknown {
		return []byte(fmt.Sprintf("%s(%d)", Unknown, code))
	}
	return []byte(name)
}

func unmarshalSymbol(table string, names []string, text []byte) (int, error) {
	s := string(text)
	if strings.HasPrefix(s, Unknown+"(") && strings.HasSuffix(s, ")") {
		return strconv.Atoi(s[len(Unknown)+1 : len(s)-1])
	}
	return lookupCode(table, names, s)
}

// ColorOrder is the channel order of the pixels attached to an output
type ColorOrder uint8

var colorOrderNames = []string{
	"RGB / RGBW",
	"RBG / RBGW",
	"GRB / GRBW",
	"GBR / GBWR",
	"BRG / BRGW",
	"BGR / BGWR",
	"RGWB",
	"RWGB",
	"GRWB",
	"GWRB",
	"WRGB",
	"WGRB",
	"RBWG",
	"RWBG",
	"BRWG",
	"BWRG",
	"WRBG",
	"WBRG",
	"GBWR",
	"GWBR",
	"BGWR",
	"BWGR",
	"WGBR",
	"WBGR",
}

func (c ColorOrder) String() string {
	return lookupName(colorOrderNames, int(c))
}

func (c ColorOrder) Known() bool {
	return c.String() != Unknown
}

func (c ColorOrder) MarshalText() ([]byte, error) {
	return marshalSymbol(c.String(), int(c)), nil
}

func (c *ColorOrder) UnmarshalText(text []byte) error {
	code, err := unmarshalSymbol("color order", colorOrderNames, text)
	if err != nil {
		return err
	}
	*c = ColorOrder(code)
	return nil
}

// ParseColorOrder returns the wire code of a named color order
func ParseColorOrder(name string) (ColorOrder, error) {
	code, err := lookupCode("color order", colorOrderNames, name)
	return ColorOrder(code), err
}

// DriverType tells which pixel channel layouts a driver profile supports
type DriverType uint8

const (
	DriverTypeRGB DriverType = iota
	DriverTypeRGBW
	DriverTypeEither
)

var driverTypeNames = []string{
	DriverTypeRGB:    "RGB Only",
	DriverTypeRGBW:   "RGBW Only",
	DriverTypeEither: "Either",
}

func (t DriverType) String() string {
	return lookupName(driverTypeNames, int(t))
}

func (t DriverType) MarshalText() ([]byte, error) {
	return marshalSymbol(t.String(), int(t)), nil
}

func (t *DriverType) UnmarshalText(text []byte) error {
	code, err := unmarshalSymbol("driver type", driverTypeNames, text)
	if err != nil {
		return err
	}
	*t = DriverType(code)
	return nil
}

// ParseDriverType returns the wire code of a named driver type
func ParseDriverType(name string) (DriverType, error) {
	code, err := lookupCode("driver type", driverTypeNames, name)
	return DriverType(code), err
}

// DriverSpeed is the clock speed capability of a driver profile
type DriverSpeed uint8

const (
	DriverSpeedFixed DriverSpeed = iota
	DriverSpeedSlow
	DriverSpeedFast
	DriverSpeedEither
	DriverSpeedAdjustable
)

var driverSpeedNames = []string{
	DriverSpeedFixed:      "Fixed single speed",
	DriverSpeedSlow:       "Slow only",
	DriverSpeedFast:       "Fast only",
	DriverSpeedEither:     "Either",
	DriverSpeedAdjustable: "Adjustable",
}

func (s DriverSpeed) String() string {
	return lookupName(driverSpeedNames, int(s))
}

func (s DriverSpeed) MarshalText() ([]byte, error) {
	return marshalSymbol(s.String(), int(s)), nil
}

func (s *DriverSpeed) UnmarshalText(text []byte) error {
	code, err := unmarshalSymbol("driver speed", driverSpeedNames, text)
	if err != nil {
		return err
	}
	*s = DriverSpeed(code)
	return nil
}

// ParseDriverSpeed returns the wire code of a named driver speed
func ParseDriverSpeed(name string) (DriverSpeed, error) {
	code, err := lookupCode("driver speed", driverSpeedNames, name)
	return DriverSpeed(code), err
}

// TestMode is the built-in test pattern the device is currently running
type TestMode uint8

const (
	TestModeLiveData TestMode = iota
	TestModeRGBWCycle
	TestModeRed
	TestModeGreen
	TestModeBlue
	TestModeWhite
	TestModeSetColor
	TestModeColorFade
	TestModeSinglePixel
)

var testModeNames = []string{
	TestModeLiveData:    "Live Data",
	TestModeRGBWCycle:   "RGBW Cycle",
	TestModeRed:         "Red",
	TestModeGreen:       "Green",
	TestModeBlue:        "Blue",
	TestModeWhite:       "White",
	TestModeSetColor:    "Set Color",
	TestModeColorFade:   "Color Fade",
	TestModeSinglePixel: "Single Pixel",
}

func (m TestMode) String() string {
	return lookupName(testModeNames, int(m))
}

func (m TestMode) MarshalText() ([]byte, error) {
	return marshalSymbol(m.String(), int(m)), nil
}

func (m *TestMode) UnmarshalText(text []byte) error {
	code, err := unmarshalSymbol("test mode", testModeNames, text)
	if err != nil {
		return err
	}
	*m = TestMode(code)
	return nil
}

// ParseTestMode returns the wire code of a named test mode
func ParseTestMode(name string) (TestMode, error) {
	code, err := lookupCode("test mode", testModeNames, name)
	return TestMode(code), err
}

// The following types decode a single byte where zero means one thing and
// any other value means the other. The raw byte is kept.

// Direction of the pixel run on an output
type Direction uint8

const (
	DirectionNormal   Direction = 0
	DirectionReversed Direction = 1
)

var directionNames = []string{"Normal", "Reversed"}

func (d Direction) String() string {
	return directionNames[boolIndex(uint8(d))]
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	code, err := lookupCode("direction", directionNames, string(text))
	if err != nil {
		return err
	}
	*d = Direction(code)
	return nil
}

// OutputProtocol is the lighting protocol the device listens to
type OutputProtocol uint8

const (
	OutputProtocolSACN   OutputProtocol = 0
	OutputProtocolArtNet OutputProtocol = 1
)

var outputProtocolNames = []string{"sACN", "Art-Net"}

func (p OutputProtocol) String() string {
	return outputProtocolNames[boolIndex(uint8(p))]
}

func (p OutputProtocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *OutputProtocol) UnmarshalText(text []byte) error {
	code, err := lookupCode("output protocol", outputProtocolNames, string(text))
	if err != nil {
		return err
	}
	*p = OutputProtocol(code)
	return nil
}

// ChannelMode is the RGB/RGBW selection of the active driver
type ChannelMode uint8

const (
	ChannelModeRGB  ChannelMode = 0
	ChannelModeRGBW ChannelMode = 1
)

var channelModeNames = []string{"RGB", "RGBW"}

func (m ChannelMode) String() string {
	return channelModeNames[boolIndex(uint8(m))]
}

func (m ChannelMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *ChannelMode) UnmarshalText(text []byte) error {
	code, err := lookupCode("channel mode", channelModeNames, string(text))
	if err != nil {
		return err
	}
	*m = ChannelMode(code)
	return nil
}

func boolIndex(b uint8) int {
	if b == 0 {
		return 0
	}
	return 1
}
