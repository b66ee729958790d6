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

package ifc

import (
	"context"

	"jinr.ru/greenlab/go-advatek/pkg/discover"
)

type DiscoverServer interface {
	Run(ctx context.Context) error

	// TriggerPoll broadcasts a poll unless the poll rate limit is exceeded
	TriggerPoll() error

	GetDevice(mac string) (*discover.Device, error)
	GetAllDevices() ([]*discover.Device, error)
	DeleteDevice(mac string) error
}

type ApiServer interface {
	Run(ctx context.Context) error
}
