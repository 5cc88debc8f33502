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

package render

import (
	"encoding/json"
	"fmt"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/mitchellh/mapstructure"
	"io"
)

type (
	jsonConfig struct {
		Pretty bool
	}

	jsonRenderer struct {
		cfg *jsonConfig
		w   io.Writer
	}
)

//===================== jsonRenderer =====================

func newJsonRenderer(params map[string]interface{}, w io.Writer) (*jsonRenderer, error) {
	jcfg := &jsonConfig{}

	err := mapstructure.Decode(params, jcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to decode Params=%v; %v", params, err)
	}

	return &jsonRenderer{
		cfg: jcfg,
		w:   w,
	}, nil
}

func (jr *jsonRenderer) Render(infos []png.ChunkInfo) error {
	for i := range infos {
		var (
			buf []byte
			err error
		)

		if jr.cfg.Pretty {
			buf, err = json.MarshalIndent(&infos[i], "", "  ")
		} else {
			buf, err = json.Marshal(&infos[i])
		}
		if err != nil {
			return fmt.Errorf("failed to marshal chunk info=%v, err=%v", infos[i], err)
		}

		_, err = fmt.Fprintln(jr.w, string(buf))
		if err != nil {
			return err
		}
	}
	return nil
}
