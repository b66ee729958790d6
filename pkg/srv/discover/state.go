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
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-advatek/pkg/discover"
	"jinr.ru/greenlab/go-advatek/pkg/log"
)

const (
	BucketPrefix = "discover_"
	DeviceKey    = "device"
)

// State keeps the last poll reply of every device, one bucket per MAC address
type State struct {
	context.Context
	DB *bbolt.DB
}

func NewState(ctx context.Context, path string) (*State, error) {
	// open discover database
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	return &State{
		Context: ctx,
		DB:      db,
	}, nil
}

// Close ...
func (s *State) Close() error {
	return s.DB.Close()
}

func BucketName(mac string) string {
	return fmt.Sprintf("%s%s", BucketPrefix, mac)
}

// SetDevice creates or replaces the record of the device
func (s *State) SetDevice(dd *discover.Device) error {
	log.Debug("Setting device: %s", dd.Key())
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketName(dd.Key())))
		if err != nil {
			return err
		}
		ddBytes, err := yaml.Marshal(dd)
		if err != nil {
			return err
		}
		return b.Put([]byte(DeviceKey), ddBytes)
	})
}

// GetDevice ...
func (s *State) GetDevice(mac string) (*discover.Device, error) {
	log.Debug("Getting device: %s", mac)
	dd := &discover.Device{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketName(mac)))
		if b == nil {
			return discover.ErrDeviceNotFound{Mac: mac}
		}
		ddBytes := b.Get([]byte(DeviceKey))
		if ddBytes == nil {
			return discover.ErrDeviceNotFound{Mac: mac}
		}
		return yaml.Unmarshal(ddBytes, dd)
	}); err != nil {
		return nil, err
	}
	return dd, nil
}

// GetAllDevices returns the stored devices ordered by MAC address
func (s *State) GetAllDevices() ([]*discover.Device, error) {
	log.Debug("Getting all devices")
	devices := []*discover.Device{}
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !bytes.HasPrefix(name, []byte(BucketPrefix)) {
				return nil
			}
			ddBytes := b.Get([]byte(DeviceKey))
			if ddBytes == nil {
				return nil
			}
			dd := &discover.Device{}
			if err := yaml.Unmarshal(ddBytes, dd); err != nil {
				log.Error("Error while unmarshalling device %s: %s", name, err)
				return err
			}
			devices = append(devices, dd)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return devices, nil
}

// DeleteDevice forgets the device
func (s *State) DeleteDevice(mac string) error {
	log.Debug("Deleting device: %s", mac)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketName(mac))); err != nil {
			if err == bbolt.ErrBucketNotFound {
				return discover.ErrDeviceNotFound{Mac: mac}
			}
			return err
		}
		return nil
	})
}
