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

// Package ops implements the user-facing operations over png streams:
// embedding, extracting and removing payload chunks, filtered listing,
// stream verification and checksum repair.
package ops

import (
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/pkg/errors"
)

// protectedTargets are the structural chunk types Encode refuses to use
// for payload embedding
var protectedTargets = []png.ChunkType{png.IHDR, png.PLTE, png.IDAT, png.IEND}

// Encode appends a new chunk of the type ctype with the msg payload to p.
// The structural types are always refused, types with an invalid reserved
// bit are refused unless force is set.
func Encode(p *png.Png, ctype string, msg []byte, force bool) error {
	ct, err := png.ParseChunkType(ctype)
	if err != nil {
		return err
	}

	for _, pt := range protectedTargets {
		if ct == pt {
			return errors.Wrapf(png.ErrProtectedChunk,
				"type=%s is reserved for the image structure", ct)
		}
	}
	if !ct.IsValid() && !force {
		return errors.Wrapf(png.ErrInvalidChunkType,
			"type=%s has an invalid reserved bit, repeat with force to embed anyway", ct)
	}

	p.AppendChunk(png.NewChunk(ct, msg))
	return nil
}

// Decode returns the payload of the first chunk of the type ctype as text.
// It returns ErrChunkNotFound if there is no such chunk, or ErrEncoding if
// the payload is not a valid utf8 string.
func Decode(p *png.Png, ctype string) (string, error) {
	ct, err := png.ParseChunkType(ctype)
	if err != nil {
		return "", err
	}

	c := p.ChunkByType(ct)
	if c == nil {
		return "", errors.Wrapf(png.ErrChunkNotFound, "type=%s", ct)
	}
	return c.Text()
}

// Remove removes the first chunk of the type ctype from p and returns it
func Remove(p *png.Png, ctype string) (*png.Chunk, error) {
	ct, err := png.ParseChunkType(ctype)
	if err != nil {
		return nil, err
	}
	return p.RemoveChunkByType(ct)
}

// List returns summaries of the chunks of p selected by the filter flt.
// A nil filter selects everything.
func List(p *png.Png, flt pql.ChunkExpFunc) []png.ChunkInfo {
	infos := p.Infos()
	if flt == nil {
		return infos
	}

	res := make([]png.ChunkInfo, 0, len(infos))
	for i, c := range p.Chunks() {
		if flt(c) {
			res = append(res, infos[i])
		}
	}
	return res
}
