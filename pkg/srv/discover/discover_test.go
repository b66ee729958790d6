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
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-advatek/pkg/config"
)

func newTestDiscoverServer(t *testing.T) *DiscoverServer {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.DiscoverConfig.Address = "127.0.0.1"
	cfg.DiscoverConfig.Port = 0
	// nobody listens there, polls go nowhere
	cfg.Broadcast = "127.0.0.1:9"
	cfg.DBPath = filepath.Join(t.TempDir(), "state", "discover.db")
	cfg.PollInterval = "1h"
	cfg.ApiConfig.Port = 0

	s, err := NewDiscoverServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestTriggerPollRateLimited(t *testing.T) {
	s := newTestDiscoverServer(t)
	require.NoError(t, s.TriggerPoll())

	err := s.TriggerPoll()
	var limited ErrRateLimited
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, MinPollGap, limited.Interval)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.PollsSent))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.PollsLimited))

	time.Sleep(MinPollGap)
	assert.NoError(t, s.TriggerPoll())
}

func TestHandleDevice(t *testing.T) {
	s := newTestDiscoverServer(t)
	s.handleDevice(newTestDevice("00:00:00:00:00:01", "PixLite A4"))
	s.handleDevice(newTestDevice("00:00:00:00:00:02", "PixLite 16"))

	devices, err := s.GetAllDevices()
	require.NoError(t, err)
	assert.Len(t, devices, 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(s.metrics.Devices))
	assert.Equal(t, 40.5, testutil.ToFloat64(s.metrics.DeviceTemp.WithLabelValues("00:00:00:00:00:01")))

	require.NoError(t, s.DeleteDevice("00:00:00:00:00:01"))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.Devices))
	dd, err := s.GetDevice("00:00:00:00:00:02")
	require.NoError(t, err)
	assert.Equal(t, "PixLite 16", dd.Model)
}

func TestRunStops(t *testing.T) {
	s := newTestDiscoverServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("discover server did not stop")
	}
}
