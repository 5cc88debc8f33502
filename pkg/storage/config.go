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

package storage

import (
	"fmt"
	"github.com/gabebw/pngme/pkg/utils"
	"strings"
)

type (
	// Config defines the Storage implementation and its settings. Location
	// is the base directory relative keys resolve against, the file
	// implementation accepts an empty Location and uses the keys as they
	// are then.
	Config struct {
		Type     StorageType `json:"type"`
		Location string      `json:"location"`
	}
)

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Type: TypeFile,
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Type != "" {
		c.Type = other.Type
	}
	if strings.TrimSpace(other.Location) != "" {
		c.Location = other.Location
	}
}

func (c *Config) Check() error {
	switch c.Type {
	case TypeFile:
	case TypeInMem:
		if strings.TrimSpace(c.Location) != "" {
			return fmt.Errorf("invalid config; location=%v, "+
				"must be empty for type=%v", c.Location, c.Type)
		}
	default:
		return fmt.Errorf("invalid config; unknown type=%v", c.Type)
	}

	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
