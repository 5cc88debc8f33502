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

package ops

import (
	"encoding/binary"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/utils"
	"github.com/logrange/range/pkg/utils/bytes"
)

type (
	// ChunkCheck is the verification result for one chunk record
	ChunkCheck struct {
		Offset      int64  `json:"offset"`
		Type        string `json:"type"`
		Length      int    `json:"length"`
		StoredCrc   uint32 `json:"storedCrc"`
		ComputedCrc uint32 `json:"computedCrc"`
		CrcOk       bool   `json:"crcOk"`
		TypeOk      bool   `json:"typeOk"`
	}

	// Report summarizes the verification of a whole stream
	Report struct {
		Chunks    []ChunkCheck `json:"chunks"`
		Total     int          `json:"total"`
		Corrupted int          `json:"corrupted"`
		Trailer   bool         `json:"trailer"`
	}
)

// Verify walks the raw stream and checks every chunk record: whether the
// type bytes are ascii letters and whether the stored checksum matches
// the computed one. Broken records are reported, not fatal; broken stream
// framing (a wrong signature or a truncation) is.
func Verify(data []byte) (*Report, error) {
	rcc, err := png.RawChunks(data)
	if err != nil {
		return nil, err
	}

	rep := &Report{Chunks: make([]ChunkCheck, 0, len(rcc)), Total: len(rcc)}
	for i := range rcc {
		rc := &rcc[i]
		cc := ChunkCheck{
			Offset:      rc.Offset,
			Type:        string(rc.TypeBytes[:]),
			Length:      len(rc.Data),
			StoredCrc:   rc.StoredCrc,
			ComputedCrc: rc.ComputedCrc(),
		}
		cc.CrcOk = cc.StoredCrc == cc.ComputedCrc
		_, terr := png.NewChunkType(rc.TypeBytes)
		cc.TypeOk = terr == nil

		if !cc.CrcOk || !cc.TypeOk {
			rep.Corrupted++
		}
		rep.Chunks = append(rep.Chunks, cc)
	}

	if len(rcc) > 0 {
		rep.Trailer = png.ChunkType(rcc[len(rcc)-1].TypeBytes) == png.IEND
	}
	return rep, nil
}

// Fix rewrites the stored checksum of every chunk record with the
// computed one. It returns a repaired copy of the stream together with
// the number of records repaired, the input bytes are left intact. Only
// checksum fields may differ between the input and the output.
func Fix(data []byte) ([]byte, int, error) {
	rcc, err := png.RawChunks(data)
	if err != nil {
		return nil, 0, err
	}

	out := bytes.BytesCopy(data)
	fixed := 0
	for i := range rcc {
		rc := &rcc[i]
		computed := rc.ComputedCrc()
		if rc.StoredCrc == computed {
			continue
		}
		binary.BigEndian.PutUint32(out[rc.Offset+8+int64(len(rc.Data)):], computed)
		fixed++
	}
	return out, fixed, nil
}

func (r *Report) String() string {
	return utils.ToJsonStr(r)
}
