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
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/discover"
	"jinr.ru/greenlab/go-advatek/pkg/log"
	"jinr.ru/greenlab/go-advatek/pkg/metrics"
	"jinr.ru/greenlab/go-advatek/pkg/srv/discover/ifc"
)

// MinPollGap is the shortest time allowed between two polls
const MinPollGap = time.Second

// DiscoverServer polls the network periodically, keeps the last reply of every
// device in the state database and serves it over the API
type DiscoverServer struct {
	*config.Config
	server       *discover.Server
	state        *State
	api          *ApiServer
	limiter      *rate.Limiter
	metrics      *metrics.Metrics
	pollInterval time.Duration
}

var _ ifc.DiscoverServer = &DiscoverServer{}

func NewDiscoverServer(ctx context.Context, cfg *config.Config) (*DiscoverServer, error) {
	log.Info("Initializing discover server with address: %s port: %d iface: %s",
		cfg.DiscoverConfig.Address, cfg.DiscoverConfig.Port, cfg.Interface)

	pollInterval, err := cfg.PollIntervalDuration()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, err
	}
	state, err := NewState(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	s := &DiscoverServer{
		Config:       cfg,
		state:        state,
		limiter:      rate.NewLimiter(rate.Every(MinPollGap), 1),
		metrics:      metrics.NewMetrics(),
		pollInterval: pollInterval,
	}

	server, err := discover.NewServer(cfg.DiscoverConfig, s.handleDevice, s.metrics)
	if err != nil {
		state.Close()
		return nil, err
	}
	s.server = server

	apiServer, err := NewApiServer(cfg.ApiConfig, s, s.metrics)
	if err != nil {
		server.Close()
		state.Close()
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

// Run starts receiving replies, the periodic poller and the API. It returns
// when the context is done or one of them fails.
func (s *DiscoverServer) Run(ctx context.Context) error {
	defer s.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.Announce {
		shutdown, err := Announce(s.ApiConfig)
		if err != nil {
			log.Warning("mDNS announcement failed: %s", err)
		} else {
			defer shutdown()
		}
	}

	errChan := make(chan error, 3)
	go func() {
		errChan <- s.server.Run(ctx)
	}()
	go func() {
		errChan <- s.api.Run(ctx)
	}()
	go func() {
		errChan <- s.runPoller(ctx)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
}

// Close releases the socket and the state database
func (s *DiscoverServer) Close() {
	s.server.Close()
	if err := s.state.Close(); err != nil {
		log.Error("Error while closing state: %s", err)
	}
}

// runPoller polls every pollInterval, each poll starts a new session
func (s *DiscoverServer) runPoller(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		if err := s.poll(); err != nil {
			log.Error("Error while polling: %s", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *DiscoverServer) poll() error {
	s.server.SetSessionID(uuid.NewString())
	return s.server.Poll()
}

// TriggerPoll polls now unless the last poll was less than MinPollGap ago
func (s *DiscoverServer) TriggerPoll() error {
	if !s.limiter.Allow() {
		s.metrics.ObservePollLimited()
		return ErrRateLimited{Interval: MinPollGap}
	}
	return s.poll()
}

func (s *DiscoverServer) handleDevice(dd *discover.Device) {
	if err := s.state.SetDevice(dd); err != nil {
		log.Error("Error while updating device: device: %s error: %s", dd.Key(), err)
		return
	}
	s.metrics.SetTemperature(dd.Key(), dd.Temperature)
	if devices, err := s.state.GetAllDevices(); err == nil {
		s.metrics.SetDevices(len(devices))
	}
}

func (s *DiscoverServer) GetDevice(mac string) (*discover.Device, error) {
	return s.state.GetDevice(mac)
}

func (s *DiscoverServer) GetAllDevices() ([]*discover.Device, error) {
	return s.state.GetAllDevices()
}

func (s *DiscoverServer) DeleteDevice(mac string) error {
	if err := s.state.DeleteDevice(mac); err != nil {
		return err
	}
	s.metrics.DeleteTemperature(mac)
	if devices, err := s.state.GetAllDevices(); err == nil {
		s.metrics.SetDevices(len(devices))
	}
	return nil
}
