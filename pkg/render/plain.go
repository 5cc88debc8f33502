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
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/mitchellh/mapstructure"
	"io"
)

type (
	plainConfig struct {
		ShowOffset bool
		RawSize    bool
	}

	plainRenderer struct {
		cfg *plainConfig
		w   io.Writer
	}
)

//===================== plainRenderer =====================

func newPlainRenderer(params map[string]interface{}, w io.Writer) (*plainRenderer, error) {
	pcfg := &plainConfig{}

	err := mapstructure.Decode(params, pcfg)
	if err != nil {
		return nil, fmt.Errorf("unable to decode Params=%v; %v", params, err)
	}

	return &plainRenderer{
		cfg: pcfg,
		w:   w,
	}, nil
}

func (pr *plainRenderer) Render(infos []png.ChunkInfo) error {
	for i := range infos {
		ci := &infos[i]
		line := fmt.Sprintf("%4d: %s %s %s crc=0x%08x", ci.Index, ci.Type,
			chunkFlags(ci), pr.sizeOf(ci), ci.Crc)
		if pr.cfg.ShowOffset {
			line += fmt.Sprintf(" offset=%d", ci.Offset)
		}

		_, err := fmt.Fprintln(pr.w, line)
		if err != nil {
			return err
		}
	}
	return nil
}

func (pr *plainRenderer) sizeOf(ci *png.ChunkInfo) string {
	if pr.cfg.RawSize {
		return fmt.Sprintf("%d", ci.Length)
	}
	return humanize.Bytes(uint64(ci.Length))
}
