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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "advatek"

// Results of a datagram decode
const (
	ResultOK        = "ok"
	ResultBadMagic  = "bad_magic"
	ResultTruncated = "truncated"
	ResultError     = "error"
)

// Metrics are the discovery counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry     *prometheus.Registry
	DecodeTotal  *prometheus.CounterVec // labels: result
	OpCodeTotal  *prometheus.CounterVec // labels: opcode
	PollsSent    prometheus.Counter
	PollsLimited prometheus.Counter
	Devices      prometheus.Gauge
	DeviceTemp   *prometheus.GaugeVec // labels: mac
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		Registry: reg,
		DecodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "decode_total",
			Help:      "Received datagrams by decode result.",
		}, []string{"result"}),
		OpCodeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "opcode_total",
			Help:      "Decoded packets by opcode.",
		}, []string{"opcode"}),
		PollsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "polls_sent_total",
			Help:      "Poll requests sent.",
		}),
		PollsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "polls_rate_limited_total",
			Help:      "Poll requests dropped by the rate limiter.",
		}),
		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "devices",
			Help:      "Devices known to the discover server.",
		}),
		DeviceTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "device_temperature_celsius",
			Help:      "Last temperature reported by a device.",
		}, []string{"mac"}),
	}
	reg.MustRegister(m.DecodeTotal, m.OpCodeTotal, m.PollsSent, m.PollsLimited, m.Devices, m.DeviceTemp)
	return m
}

// Handler returns the prometheus HTTP handler for the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveDecode(result string) {
	if m == nil {
		return
	}
	m.DecodeTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveOpCode(opcode string) {
	if m == nil {
		return
	}
	m.OpCodeTotal.WithLabelValues(opcode).Inc()
}

func (m *Metrics) ObservePoll() {
	if m == nil {
		return
	}
	m.PollsSent.Inc()
}

func (m *Metrics) ObservePollLimited() {
	if m == nil {
		return
	}
	m.PollsLimited.Inc()
}

func (m *Metrics) SetDevices(n int) {
	if m == nil {
		return
	}
	m.Devices.Set(float64(n))
}

func (m *Metrics) SetTemperature(mac string, celsius float64) {
	if m == nil {
		return
	}
	m.DeviceTemp.WithLabelValues(mac).Set(celsius)
}

func (m *Metrics) DeleteTemperature(mac string) {
	if m == nil {
		return
	}
	m.DeviceTemp.DeleteLabelValues(mac)
}
