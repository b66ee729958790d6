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

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-advatek/cmd/output"
	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/discover"
)

const (
	WindowOptionName    = "window"
	IfaceOptionName     = "iface"
	BroadcastOptionName = "broadcast"
)

// NewPollCommand broadcasts one poll and prints the devices that replied
func NewPollCommand(cfg *config.Config) *cobra.Command {
	var window, iface, broadcast, format string
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll the network once and print the devices that replied",
		RunE: func(cmd *cobra.Command, args []string) error {
			discoverConfig := *cfg.DiscoverConfig
			if window != "" {
				discoverConfig.Window = window
			}
			if iface != "" {
				discoverConfig.Interface = iface
			}
			if broadcast != "" {
				discoverConfig.Broadcast = broadcast
			}
			windowDuration, err := discoverConfig.WindowDuration()
			if err != nil {
				return err
			}
			devices, err := discover.Discover(cmd.Context(), &discoverConfig, windowDuration, nil)
			if err != nil {
				return err
			}
			return output.Print(cmd.OutOrStdout(), format, devices)
		},
	}
	cmd.Flags().StringVar(&window, WindowOptionName, "", fmt.Sprintf("How long to wait for replies. Default %s", config.DefaultDiscoverWindow))
	cmd.Flags().StringVar(&iface, IfaceOptionName, "", "Interface to poll on, its subnet broadcast address is used. E.g. eth0")
	cmd.Flags().StringVar(&broadcast, BroadcastOptionName, "", fmt.Sprintf("Address polls are sent to. Default %s", config.DefaultBroadcastAddress))
	cmd.Flags().StringVarP(&format, output.OptionName, "o", output.FormatYaml, output.OptionHelp)
	return cmd
}
