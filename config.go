// Copyright 2019-2020 The pngme Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pngme

import (
	"encoding/json"
	"fmt"
	"github.com/gabebw/pngme/pkg/render"
	"github.com/gabebw/pngme/pkg/scan"
	"github.com/gabebw/pngme/pkg/storage"
	"github.com/gabebw/pngme/pkg/utils"
	"io/ioutil"
)

// Config struct just aggregates the configs of the different tool parts
// in one place
type Config struct {
	// Render defines how chunk listings are printed
	Render *render.Config `json:"render"`

	// Storage defines where png streams are read from and written to
	Storage *storage.Config `json:"storage"`

	// Scan holds the defaults of the scan command
	Scan *scan.Config `json:"scan"`

	// HistoryFile overrides the default shell history file location
	HistoryFile string `json:"historyFile"`

	// ForceReserved allows embedding into chunk types whose reserved bit
	// is not valid
	ForceReserved bool `json:"forceReserved"`
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Render:  render.NewDefaultConfig(),
		Storage: storage.NewDefaultConfig(),
		Scan:    scan.NewDefaultConfig(),
	}
}

func LoadCfgFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	err = json.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}

	c.Render.Apply(other.Render)
	c.Storage.Apply(other.Storage)
	c.Scan.Apply(other.Scan)
	if other.HistoryFile != "" {
		c.HistoryFile = other.HistoryFile
	}
	if other.ForceReserved {
		c.ForceReserved = true
	}
}

func (c *Config) Check() error {
	if c.Render == nil {
		return fmt.Errorf("invalid config; render=%v, must be non-nil", c.Render)
	}
	if c.Storage == nil {
		return fmt.Errorf("invalid config; storage=%v, must be non-nil", c.Storage)
	}
	if c.Scan == nil {
		return fmt.Errorf("invalid config; scan=%v, must be non-nil", c.Scan)
	}
	if err := c.Render.Check(); err != nil {
		return err
	}
	if err := c.Storage.Check(); err != nil {
		return err
	}
	return c.Scan.Check()
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
