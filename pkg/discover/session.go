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
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/log"
	"jinr.ru/greenlab/go-advatek/pkg/metrics"
)

// Discover broadcasts a single poll and collects replies for the given window.
// Devices are deduplicated by MAC, the latest reply wins, and sorted by MAC.
func Discover(ctx context.Context, cfg *config.DiscoverConfig, window time.Duration, m *metrics.Metrics) ([]*Device, error) {
	sessionID := uuid.NewString()
	log.Info("Starting discover session: %s window: %s", sessionID, window)

	var mu sync.Mutex
	found := make(map[string]*Device)
	server, err := NewServer(cfg, func(dd *Device) {
		mu.Lock()
		defer mu.Unlock()
		found[dd.Key()] = dd
	}, m)
	if err != nil {
		return nil, err
	}
	defer server.Close()
	server.SetSessionID(sessionID)

	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- server.Run(ctx)
	}()

	if err := server.Poll(); err != nil {
		cancel()
		<-runErr
		return nil, err
	}

	if err := <-runErr; err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	devices := make([]*Device, 0, len(found))
	for _, dd := range found {
		devices = append(devices, dd)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Key() < devices[j].Key()
	})
	log.Info("Discover session %s found %d device(s)", sessionID, len(devices))
	return devices, nil
}
