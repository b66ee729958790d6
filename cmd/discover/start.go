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
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	srvdiscover "jinr.ru/greenlab/go-advatek/pkg/srv/discover"
)

const (
	AnnounceOptionName = "announce"
)

// NewStartCommand runs the discover server until interrupted
func NewStartCommand(cfg *config.Config) *cobra.Command {
	var announce bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start discover server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if announce {
				cfg.Announce = true
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			server, err := srvdiscover.NewDiscoverServer(ctx, cfg)
			if err != nil {
				return err
			}
			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&announce, AnnounceOptionName, false, "Announce the API with mDNS")
	return cmd
}
