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
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-advatek/cmd/output"
	"jinr.ru/greenlab/go-advatek/pkg/command"
	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/discover"
)

const (
	OfflineAfterOptionName = "offline-after"
)

// DeviceStatus is a discovered device as listed by the list command
type DeviceStatus struct {
	*discover.Device
	Online bool `json:"online"`
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	var offlineAfter, format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices known to the discover server",
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConfig := *cfg.ServerConfig
			if offlineAfter != "" {
				serverConfig.OfflineAfter = offlineAfter
			}
			offlineDuration, err := serverConfig.OfflineAfterDuration()
			if err != nil {
				return err
			}
			apiClient := command.NewApiClient(cfg)
			devices, err := apiClient.ListDevices()
			if err != nil {
				return err
			}
			now := time.Now()
			statuses := make([]DeviceStatus, 0, len(devices))
			for _, device := range devices {
				statuses = append(statuses, DeviceStatus{Device: device, Online: device.Online(now, offlineDuration)})
			}
			return output.Print(cmd.OutOrStdout(), format, statuses)
		},
	}
	cmd.Flags().StringVar(&offlineAfter, OfflineAfterOptionName, "", fmt.Sprintf("Device is offline when not seen for this long. Default %s", config.DefaultOfflineAfter))
	cmd.Flags().StringVarP(&format, output.OptionName, "o", output.FormatYaml, output.OptionHelp)
	return cmd
}
