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
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-advatek/pkg/log"
)

const (
	// PollReplyLayerNum identifies the layer
	PollReplyLayerNum = 1991
	// NicknameLen is the fixed size of the nickname field
	NicknameLen = 40
)

type Mac struct {
	net.HardwareAddr
}

func (m Mac) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mac) UnmarshalJSON(bytes []byte) error {
	trimmed := strings.Trim(string(bytes), "\"")
	if trimmed == "" {
		m.HardwareAddr = nil
		return nil
	}
	mac, err := net.ParseMAC(trimmed)
	if err != nil {
		return err
	}
	m.HardwareAddr = mac
	return nil
}

// Identity is the hardware and firmware description of a device
type Identity struct {
	VersionCurrent uint8   `json:"versionCurrent"`
	MAC            Mac     `json:"mac"`
	Model          string  `json:"model"`
	HwRev          float64 `json:"hwRev"`
	AssistantSwRev string  `json:"assistantSwRev"`
	Firmware       string  `json:"firmware"`
	Brand          uint8   `json:"brand"`
}

// Network is the addressing of a device, current and configured
type Network struct {
	IP           net.IP         `json:"ip"`
	Subnet       net.IP         `json:"subnet"`
	DHCP         bool           `json:"dhcp"`
	StaticIP     net.IP         `json:"staticIP"`
	StaticSubnet net.IP         `json:"staticSubnet"`
	Protocol     OutputProtocol `json:"protocol"`
	HoldLast     bool           `json:"holdLast"`
}

// Output is the configuration of one pixel output
type Output struct {
	Pixels       uint16     `json:"pixels"`
	Universe     uint16     `json:"universe"`
	StartChannel uint16     `json:"startChannel"`
	NullPixels   uint8      `json:"nullPixels"`
	ZigZag       uint16     `json:"zigZag"`
	Direction    Direction  `json:"direction"`
	ColorOrder   ColorOrder `json:"colorOrder"`
	Grouping     uint16     `json:"grouping"`
	Brightness   uint8      `json:"brightness"`
}

type OutputConfig struct {
	SimpleConfig       bool     `json:"simpleConfig"`
	MaxPixelsPerOutput uint16   `json:"maxPixelsPerOutput"`
	Outputs            []Output `json:"outputs"`
}

type DMXOutput struct {
	Enabled  bool   `json:"enabled"`
	Universe uint16 `json:"universe"`
}

// Driver is a pixel chip profile the device is able to drive
type Driver struct {
	Type       DriverType  `json:"type"`
	Speed      DriverSpeed `json:"speed"`
	Expandable bool        `json:"expandable"`
	Name       string      `json:"name"`
}

type DMXConfig struct {
	DMXOutputs    []DMXOutput `json:"dmxOutputs"`
	SACNAllowed   bool        `json:"dmxSACNAllowed"`
	ArtNetAllowed bool        `json:"dmxArtNetAllowed"`
	// DriverNameLength is the size of every entry of the driver name table
	DriverNameLength      uint8       `json:"driverNameLength"`
	Drivers               []Driver    `json:"drivers"`
	CurrentDriverIndex    uint8       `json:"currentDriverInt"`
	CurrentDriver         string      `json:"currentDriver"`
	CurrentDriverType     ChannelMode `json:"currentDriverType"`
	CurrentDriverSpeed    DriverSpeed `json:"currentDriverSpeed"`
	CurrentDriverExpanded bool        `json:"currentDriverExpanded"`
}

// Environment holds gamma, sensors and the test pattern state.
// Gamma and TestColor are indexed R, G, B, W.
type Environment struct {
	Gamma             [4]float64 `json:"gamma"`
	Nickname          string     `json:"nickname"`
	Temperature       float64    `json:"temperature"`
	MaxTargetTemp     uint8      `json:"maxTargetTemp"`
	PowerBankVoltages []float64  `json:"powerBankVoltages"`
	TestMode          TestMode   `json:"testMode"`
	TestColor         [4]uint8   `json:"testColor"`
	TestOutput        uint8      `json:"testOutputNum"`
	TestPixel         uint16     `json:"testPixelNum"`
}

// PollReply is the status a device sends in response to OpPoll
type PollReply struct {
	Identity
	Network
	OutputConfig
	DMXConfig
	Environment
}

func (r *PollReply) String() string {
	result, err := yaml.Marshal(r)
	if err != nil {
		log.Error("Error occured while marshaling poll reply, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

func decodeIdentity(c *cursor) (Identity, error) {
	id := Identity{}
	id.VersionCurrent = c.uint8("versionCurrent", -1)
	id.MAC = c.mac("mac")
	id.Model = c.prefixedText("lenModel", "model")
	id.HwRev = c.tenths("hwRev", -1)
	id.AssistantSwRev = c.semver("assistantSwRev")
	id.Firmware = c.prefixedText("lenFirmware", "firmware")
	id.Brand = c.uint8("brand", -1)
	return id, c.Err()
}

func decodeNetwork(c *cursor) (Network, error) {
	n := Network{}
	n.IP = c.ipv4("ip")
	n.Subnet = c.ipv4("subnet")
	n.DHCP = c.flag("dhcp", -1)
	n.StaticIP = c.ipv4("staticIP")
	n.StaticSubnet = c.ipv4("staticSubnet")
	n.Protocol = OutputProtocol(c.uint8("protocol", -1))
	n.HoldLast = c.flag("holdLast", -1)
	return n, c.Err()
}

// decodeOutputConfig reads numOutputs and then one array per output property.
// The arrays follow each other, so all outputs get their pixel count before
// any of them gets a universe.
func decodeOutputConfig(c *cursor) (OutputConfig, error) {
	oc := OutputConfig{}
	oc.SimpleConfig = c.flag("simpleConfig", -1)
	oc.MaxPixelsPerOutput = c.uint16("maxPixPerOutput", -1)
	num := int(c.uint8("numOutputs", -1))
	if c.Err() != nil {
		return oc, c.Err()
	}

	out := make([]Output, num)
	for j := range out {
		out[j].Pixels = c.uint16("outputPixels", j)
	}
	for j := range out {
		out[j].Universe = c.uint16("outputUniverse", j)
	}
	for j := range out {
		out[j].StartChannel = c.uint16("outputChannel", j)
	}
	for j := range out {
		out[j].NullPixels = c.uint8("outputNull", j)
	}
	for j := range out {
		out[j].ZigZag = c.uint16("outputZig", j)
	}
	for j := range out {
		out[j].Direction = Direction(c.uint8("outputReverse", j))
	}
	for j := range out {
		out[j].ColorOrder = ColorOrder(c.uint8("colorOrder", j))
	}
	for j := range out {
		out[j].Grouping = c.uint16("outputGrouping", j)
	}
	for j := range out {
		out[j].Brightness = c.uint8("outputBrightness", j)
	}
	oc.Outputs = out
	return oc, c.Err()
}

func decodeDMXConfig(c *cursor) (DMXConfig, error) {
	dc := DMXConfig{}
	numDMX := int(c.uint8("numDMXOut", -1))
	// bit 0 is sACN, bit 1 is Art-Net
	allowed := c.uint8("protocolsAllowed", -1)
	dc.SACNAllowed = allowed&0x01 == 0x01
	dc.ArtNetAllowed = allowed&0x02 == 0x02
	if c.Err() != nil {
		return dc, c.Err()
	}

	dmx := make([]DMXOutput, numDMX)
	for j := range dmx {
		dmx[j].Enabled = c.flag("dmxEnabled", j)
	}
	for j := range dmx {
		dmx[j].Universe = c.uint16("dmxUniverse", j)
	}
	dc.DMXOutputs = dmx

	numDrivers := int(c.uint8("numDrivers", -1))
	dc.DriverNameLength = c.uint8("driverNameLength", -1)
	if c.Err() != nil {
		return dc, c.Err()
	}

	drivers := make([]Driver, numDrivers)
	for j := range drivers {
		drivers[j].Type = DriverType(c.uint8("driverType", j))
	}
	for j := range drivers {
		drivers[j].Speed = DriverSpeed(c.uint8("driverSpeed", j))
	}
	for j := range drivers {
		drivers[j].Expandable = c.flag("driverExpandable", j)
	}
	for j := range drivers {
		drivers[j].Name = c.text("driverName", j, int(dc.DriverNameLength))
	}
	dc.Drivers = drivers

	dc.CurrentDriverIndex = c.uint8("currentDriverInt", -1)
	if int(dc.CurrentDriverIndex) < len(drivers) {
		dc.CurrentDriver = drivers[dc.CurrentDriverIndex].Name
	}
	dc.CurrentDriverType = ChannelMode(c.uint8("currentDriverType", -1))
	dc.CurrentDriverSpeed = DriverSpeed(c.uint8("currentDriverSpeed", -1))
	dc.CurrentDriverExpanded = c.flag("currentDriverExpanded", -1)
	return dc, c.Err()
}

func decodeEnvironment(c *cursor) (Environment, error) {
	env := Environment{}
	for j := range env.Gamma {
		env.Gamma[j] = c.tenths("gamma", j)
	}
	env.Nickname = c.text("nickname", -1, NicknameLen)
	// degrees Celsius times ten
	env.Temperature = c.tenths16("temperature", -1)
	env.MaxTargetTemp = c.uint8("maxTargetTemp", -1)

	numBanks := int(c.uint8("numPowerBanks", -1))
	if c.Err() != nil {
		return env, c.Err()
	}
	env.PowerBankVoltages = make([]float64, numBanks)
	for j := range env.PowerBankVoltages {
		env.PowerBankVoltages[j] = c.tenths16("powerBankVoltage", j)
	}

	env.TestMode = TestMode(c.uint8("testMode", -1))
	for j := range env.TestColor {
		env.TestColor[j] = c.uint8("testColor", j)
	}
	env.TestOutput = c.uint8("testOutputNum", -1)
	env.TestPixel = c.uint16("testPixelNum", -1)
	return env, c.Err()
}

// DecodePollReply decodes the body that follows the frame header of an OpPollReply packet.
// Bytes left after the last field are ignored.
func DecodePollReply(body []byte) (*PollReply, error) {
	var err error
	r := &PollReply{}
	c := newCursor(body, AdvatekHeaderLen)
	if r.Identity, err = decodeIdentity(c); err != nil {
		return nil, err
	}
	if r.Network, err = decodeNetwork(c); err != nil {
		return nil, err
	}
	if r.OutputConfig, err = decodeOutputConfig(c); err != nil {
		return nil, err
	}
	if r.DMXConfig, err = decodeDMXConfig(c); err != nil {
		return nil, err
	}
	if r.Environment, err = decodeEnvironment(c); err != nil {
		return nil, err
	}
	if c.Remaining() > 0 {
		log.Debug("Ignoring %d trailing bytes after poll reply", c.Remaining())
	}
	return r, nil
}

type PollReplyLayer struct {
	layers.BaseLayer
	PollReply
}

var PollReplyLayerType = gopacket.RegisterLayerType(PollReplyLayerNum,
	gopacket.LayerTypeMetadata{Name: "PollReplyLayerType", Decoder: gopacket.DecodeFunc(decodePollReplyLayer)})

func (pr *PollReplyLayer) LayerType() gopacket.LayerType {
	return PollReplyLayerType
}

func (pr *PollReplyLayer) CanDecode() gopacket.LayerClass {
	return PollReplyLayerType
}

func (pr *PollReplyLayer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

// DecodeFromBytes decodes the poll reply body. Nothing is kept if the body is truncated.
func (pr *PollReplyLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	reply, err := DecodePollReply(data)
	if err != nil {
		if _, ok := err.(ErrTruncated); ok {
			df.SetTruncated()
		}
		return err
	}
	pr.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	pr.PollReply = *reply
	return nil
}

// SerializeTo encodes the poll reply body. Driver names are cut or padded to
// DriverNameLength and the nickname to NicknameLen.
func (pr *PollReplyLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	body, err := pr.PollReply.MarshalBinary()
	if err != nil {
		return err
	}
	bytes, err := b.PrependBytes(len(body))
	if err != nil {
		return err
	}
	copy(bytes, body)
	return nil
}

// MarshalBinary encodes the reply body in wire order, without the frame header
func (r *PollReply) MarshalBinary() ([]byte, error) {
	if len(r.Outputs) > 255 || len(r.DMXOutputs) > 255 || len(r.Drivers) > 255 || len(r.PowerBankVoltages) > 255 {
		return nil, fmt.Errorf("too many repeated entries to fit a count byte")
	}
	if len(r.Model) > 255 || len(r.Firmware) > 255 {
		return nil, fmt.Errorf("model or firmware name longer than 255 bytes")
	}
	w := &writer{}

	w.u8(r.VersionCurrent)
	mac := make([]byte, 6)
	copy(mac, r.MAC.HardwareAddr)
	w.raw(mac)
	w.u8(uint8(len(r.Model)))
	w.raw([]byte(r.Model))
	w.u8(uint8(r.HwRev*10 + 0.5))
	var major, minor, patch uint8
	fmt.Sscanf(r.AssistantSwRev, "%d.%d.%d", &major, &minor, &patch)
	w.raw([]byte{major, minor, patch})
	w.u8(uint8(len(r.Firmware)))
	w.raw([]byte(r.Firmware))
	w.u8(r.Brand)

	w.ipv4(r.IP)
	w.ipv4(r.Subnet)
	w.flag(r.DHCP)
	w.ipv4(r.StaticIP)
	w.ipv4(r.StaticSubnet)
	w.u8(uint8(r.Protocol))
	w.flag(r.HoldLast)

	w.flag(r.SimpleConfig)
	w.u16(r.MaxPixelsPerOutput)
	w.u8(uint8(len(r.Outputs)))
	for _, o := range r.Outputs {
		w.u16(o.Pixels)
	}
	for _, o := range r.Outputs {
		w.u16(o.Universe)
	}
	for _, o := range r.Outputs {
		w.u16(o.StartChannel)
	}
	for _, o := range r.Outputs {
		w.u8(o.NullPixels)
	}
	for _, o := range r.Outputs {
		w.u16(o.ZigZag)
	}
	for _, o := range r.Outputs {
		w.u8(uint8(o.Direction))
	}
	for _, o := range r.Outputs {
		w.u8(uint8(o.ColorOrder))
	}
	for _, o := range r.Outputs {
		w.u16(o.Grouping)
	}
	for _, o := range r.Outputs {
		w.u8(o.Brightness)
	}

	w.u8(uint8(len(r.DMXOutputs)))
	var allowed uint8
	if r.SACNAllowed {
		allowed |= 0x01
	}
	if r.ArtNetAllowed {
		allowed |= 0x02
	}
	w.u8(allowed)
	for _, d := range r.DMXOutputs {
		w.flag(d.Enabled)
	}
	for _, d := range r.DMXOutputs {
		w.u16(d.Universe)
	}
	w.u8(uint8(len(r.Drivers)))
	w.u8(r.DriverNameLength)
	for _, d := range r.Drivers {
		w.u8(uint8(d.Type))
	}
	for _, d := range r.Drivers {
		w.u8(uint8(d.Speed))
	}
	for _, d := range r.Drivers {
		w.flag(d.Expandable)
	}
	for _, d := range r.Drivers {
		w.fixed(d.Name, int(r.DriverNameLength))
	}
	w.u8(r.CurrentDriverIndex)
	w.u8(uint8(r.CurrentDriverType))
	w.u8(uint8(r.CurrentDriverSpeed))
	w.flag(r.CurrentDriverExpanded)

	for _, g := range r.Gamma {
		w.u8(uint8(g*10 + 0.5))
	}
	w.fixed(r.Nickname, NicknameLen)
	w.u16(uint16(r.Temperature*10 + 0.5))
	w.u8(r.MaxTargetTemp)
	w.u8(uint8(len(r.PowerBankVoltages)))
	for _, v := range r.PowerBankVoltages {
		w.u16(uint16(v*10 + 0.5))
	}
	w.u8(uint8(r.TestMode))
	w.raw(r.TestColor[:])
	w.u8(r.TestOutput)
	w.u16(r.TestPixel)
	return w.buf, nil
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *writer) flag(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) raw(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *writer) ipv4(ip net.IP) {
	b := make([]byte, net.IPv4len)
	if ip4 := ip.To4(); ip4 != nil {
		copy(b, ip4)
	}
	w.raw(b)
}

// fixed writes s into exactly n bytes, NUL padded
func (w *writer) fixed(s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.raw(b)
}

func decodePollReplyLayer(data []byte, p gopacket.PacketBuilder) error {
	pr := &PollReplyLayer{}
	err := pr.DecodeFromBytes(data, p)
	if err != nil {
		log.Debug("Error while decoding poll reply layer: %s", err)
		return err
	}
	p.AddLayer(pr)
	return nil
}
