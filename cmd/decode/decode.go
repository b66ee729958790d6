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

package decode

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-advatek/cmd/output"
	"jinr.ru/greenlab/go-advatek/pkg/layers"
)

const (
	HexOptionName = "hex"
)

const decodeExample = `
Decode the poll request
# go-advatek decode --hex "41 64 76 61 74 65 63 68 00 00 01 08"

Decode a datagram saved to a file, - reads stdin
# go-advatek decode reply.bin
`

// Packet is a decoded datagram as printed by the decode command
type Packet struct {
	layers.Frame
	Reply *layers.PollReply `json:"reply,omitempty"`
}

// NewCommand decodes one captured datagram and prints it
func NewCommand() *cobra.Command {
	var hexData, format string
	cmd := &cobra.Command{
		Use:     "decode [FILE]",
		Short:   "Decode a captured Advatek datagram",
		Example: decodeExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDatagram(cmd.InOrStdin(), hexData, args)
			if err != nil {
				return err
			}
			parsed, err := layers.Decode(data)
			if err != nil {
				return err
			}
			packet := Packet{Frame: parsed.Header()}
			if reply, ok := parsed.(*layers.PollReplyPacket); ok {
				packet.Reply = reply.PollReply
			}
			return output.Print(cmd.OutOrStdout(), format, packet)
		},
	}
	cmd.Flags().StringVar(&hexData, HexOptionName, "", "Datagram as hex, spaces and colons are ignored")
	cmd.Flags().StringVarP(&format, output.OptionName, "o", output.FormatYaml, output.OptionHelp)
	return cmd
}

func readDatagram(stdin io.Reader, hexData string, args []string) ([]byte, error) {
	switch {
	case hexData != "" && len(args) > 0:
		return nil, fmt.Errorf("--%s and FILE are mutually exclusive", HexOptionName)
	case hexData != "":
		return ParseHex(hexData)
	case len(args) == 0 || args[0] == "-":
		return io.ReadAll(stdin)
	default:
		return os.ReadFile(args[0])
	}
}

// ParseHex decodes hex text, ignoring whitespace, colons and an optional 0x prefix
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
