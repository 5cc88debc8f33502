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

package scan

import (
	"fmt"
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/gabebw/pngme/pkg/utils"
	"github.com/mohae/deepcopy"
	"strings"
)

type (
	// Config defines what to scan: the Root of the directory tree, an
	// optional Where filter expression applied to every chunk, and
	// FollowExt with the file extensions to consider. An empty FollowExt
	// makes the scanner look into every regular file.
	Config struct {
		Root      string   `json:"root"`
		Where     string   `json:"where"`
		FollowExt []string `json:"followExt"`
	}
)

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Root: ".",
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if strings.TrimSpace(other.Root) != "" {
		c.Root = other.Root
	}
	if strings.TrimSpace(other.Where) != "" {
		c.Where = other.Where
	}
	if len(other.FollowExt) != 0 {
		c.FollowExt = deepcopy.Copy(other.FollowExt).([]string)
	}
}

func (c *Config) Check() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("invalid config; root=%v, must be non-empty", c.Root)
	}
	if _, err := pql.ParseExpr(c.Where); err != nil {
		return fmt.Errorf("invalid config; could not parse the where "+
			"expression %q, err=%v", c.Where, err)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
