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

	"jinr.ru/greenlab/go-advatek/pkg/command"
	"jinr.ru/greenlab/go-advatek/pkg/config"
)

func NewTriggerCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Ask the discover server to poll now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := command.NewApiClient(cfg).Poll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Poll sent")
			return nil
		},
	}
	return cmd
}
