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
	"os"

	"github.com/grandcat/zeroconf"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/log"
)

// Announce registers the API on mDNS so clients on the link can find it.
// The returned function removes the registration.
func Announce(cfg *config.ApiConfig) (func(), error) {
	host, err := os.Hostname()
	if err != nil {
		host = "go-advatek"
	}
	instance := fmt.Sprintf("go-advatek on %s", host)
	log.Info("Announcing %s as %s on port %d", config.DefaultAnnounceService, instance, cfg.Port)
	server, err := zeroconf.Register(instance, config.DefaultAnnounceService, "local.", cfg.Port,
		[]string{"path=/api", "docs=/docs"}, nil)
	if err != nil {
		return nil, err
	}
	return server.Shutdown, nil
}
