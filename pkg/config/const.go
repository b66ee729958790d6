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

package config

const (
	ConfigDir                = ".go-advatek"
	ConfigFile               = "config"
	ConfigType               = "yaml"
	DBFile                   = "discover.db"
	EnvPrefix                = "GO_ADVATEK"
	DefaultLogLevel          = "info"
	DefaultDiscoverAddress   = "0.0.0.0"
	DefaultDiscoverPort      = 49150
	DefaultBroadcastAddress  = "255.255.255.255"
	DefaultDiscoverInterface = ""
	DefaultDiscoverWindow    = "3s"
	DefaultPollInterval      = "5s"
	DefaultOfflineAfter      = "15s"
	DefaultApiAddress        = "127.0.0.1"
	DefaultApiPort           = 8004
	DefaultAnnounceService   = "_advatek-discover._tcp"
)
