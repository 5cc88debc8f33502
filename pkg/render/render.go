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

// Package render turns chunk listings into text. Renderers are selected
// by Config.Type and write one record per chunk to the provided writer.
package render

import (
	"fmt"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/utils"
	"github.com/mohae/deepcopy"
	"io"
	"strings"
)

type (
	// Config selects a renderer implementation by its Type and holds
	// the renderer-specific settings in Params
	Config struct {
		Type   string
		Params map[string]interface{}
	}

	// Renderer writes chunk descriptors to its output in some format.
	// Render may be called many times for the same renderer, once per
	// listed stream.
	Renderer interface {
		Render(infos []png.ChunkInfo) error
	}
)

const (
	RndTypePlain = "plain"
	RndTypeJson  = "json"
)

const (
	PrmPlainShowOffset = "showOffset"
	PrmPlainRawSize    = "rawSize"
	PrmJsonPretty      = "pretty"
)

func NewRenderer(cfg *Config, w io.Writer) (Renderer, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	switch cfg.Type {
	case RndTypePlain:
		return newPlainRenderer(cfg.Params, w)
	case RndTypeJson:
		return newJsonRenderer(cfg.Params, w)
	}

	return nil, fmt.Errorf("unknown renderer type=%v", cfg.Type)
}

// chunkFlags forms the chunk property letters: 'C' critical or 'a'
// ancillary, 'P' public or 'p' private, 'S' safe to copy or 's' not,
// with a trailing '!' when the reserved bit is not valid
func chunkFlags(ci *png.ChunkInfo) string {
	var sb strings.Builder
	if ci.Critical {
		sb.WriteByte('C')
	} else {
		sb.WriteByte('a')
	}
	if ci.Public {
		sb.WriteByte('P')
	} else {
		sb.WriteByte('p')
	}
	if ci.SafeToCopy {
		sb.WriteByte('S')
	} else {
		sb.WriteByte('s')
	}
	if !ci.Valid {
		sb.WriteByte('!')
	}
	return sb.String()
}

//===================== config =====================

func NewDefaultConfig() *Config {
	return &Config{
		Type:   RndTypePlain,
		Params: map[string]interface{}{},
	}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Type != "" {
		c.Type = other.Type
	}
	if other.Params != nil {
		c.Params = deepcopy.Copy(other.Params).(map[string]interface{})
	}
}

func (c *Config) Check() error {
	if c.Type != RndTypePlain && c.Type != RndTypeJson {
		return fmt.Errorf("unknown Type=%v", c.Type)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
