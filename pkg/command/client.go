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

package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/discover"
	srvdiscover "jinr.ru/greenlab/go-advatek/pkg/srv/discover"
)

// ApiClient talks to a running discover server
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: cfg.ApiConfig.Url(),
	}
}

func (c *ApiClient) devicesUrl() string {
	return fmt.Sprintf("%s/devices", c.ApiPrefix)
}

func (c *ApiClient) deviceUrl(mac string) string {
	return fmt.Sprintf("%s/devices/%s", c.ApiPrefix, mac)
}

// responseError turns an error status into an error, using the server message when there is one
func responseError(r *req.Resp) error {
	status := &srvdiscover.Status{}
	if err := json.Unmarshal(r.Bytes(), status); err == nil && status.Message != "" {
		return errors.New(status.Message)
	}
	return errors.New(r.Response().Status)
}

// ListDevices sends request to get all discovered devices
func (c *ApiClient) ListDevices() ([]*discover.Device, error) {
	r, err := req.Get(c.devicesUrl())
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, responseError(r)
	}
	var devices []*discover.Device
	if err := r.ToJSON(&devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDevice sends request to get one device by MAC address
func (c *ApiClient) GetDevice(mac string) (*discover.Device, error) {
	r, err := req.Get(c.deviceUrl(mac))
	if err != nil {
		return nil, err
	}
	switch r.Response().StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, discover.ErrDeviceNotFound{Mac: mac}
	default:
		return nil, responseError(r)
	}
	device := &discover.Device{}
	if err := r.ToJSON(device); err != nil {
		return nil, err
	}
	return device, nil
}

// DeleteDevice sends request to forget a device
func (c *ApiClient) DeleteDevice(mac string) error {
	r, err := req.Delete(c.deviceUrl(mac))
	if err != nil {
		return err
	}
	switch r.Response().StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return discover.ErrDeviceNotFound{Mac: mac}
	default:
		return responseError(r)
	}
}

// Poll asks the server to broadcast a poll now
func (c *ApiClient) Poll() error {
	r, err := req.Post(fmt.Sprintf("%s/poll", c.ApiPrefix))
	if err != nil {
		return err
	}
	switch r.Response().StatusCode {
	case http.StatusAccepted, http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return srvdiscover.ErrRateLimited{Interval: srvdiscover.MinPollGap}
	default:
		return responseError(r)
	}
}
