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

// Package png contains the png chunk model: a byte stream is parsed into an
// ordered sequence of typed, length-delimited, checksummed chunks, which
// can be edited and serialized back without touching the image data. The
// stream layout is big-endian throughout:
//
//	+----------------------------------+
//	| signature: 8 bytes               |
//	+----------------------------------+
//	| length: 4 bytes                  | <- payload length, 0..2^31-1
//	| type: 4 bytes                    | <- ascii letters, case encodes flags
//	| payload: `length` bytes          |
//	| crc: 4 bytes                     | <- CRC-32 over type and payload
//	+----------------------------------+
//	| ... more chunks ...              |
//	+----------------------------------+
//	| IEND chunk                       | <- always last
//	+----------------------------------+
package png

import (
	"bytes"
	"fmt"
	"github.com/pkg/errors"
)

type (
	// Png is an ordered sequence of chunks parsed from or serialized to a
	// byte buffer. The first chunk of a conformant stream is IHDR and the
	// last one is always IEND; the order in between is insertion order.
	// Png exclusively owns its chunks.
	Png struct {
		chunks []*Chunk
	}

	// ChunkInfo is a display-friendly summary of one chunk in a stream
	ChunkInfo struct {
		Index      int    `json:"index"`
		Offset     int64  `json:"offset"`
		Type       string `json:"type"`
		Length     int    `json:"length"`
		Crc        uint32 `json:"crc"`
		Critical   bool   `json:"critical"`
		Public     bool   `json:"public"`
		Valid      bool   `json:"valid"`
		SafeToCopy bool   `json:"safeToCopy"`
	}
)

// Signature is the fixed 8-byte sequence every png stream starts with
var Signature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func checkSignature(data []byte) error {
	if len(data) < len(Signature) || !bytes.Equal(data[:len(Signature)], Signature) {
		pfx := data
		if len(pfx) > len(Signature) {
			pfx = pfx[:len(Signature)]
		}
		return errors.Wrapf(ErrInvalidSignature,
			"stream starts with [% x], expected [% x]", pfx, Signature)
	}
	return nil
}

// New creates Png from the chunks provided as they are. No structural
// checks are made, so the result may serialize to a non-conformant stream.
func New(chunks []*Chunk) *Png {
	return &Png{chunks: chunks}
}

// Parse parses the whole byte stream provided. It returns
// ErrInvalidSignature if the stream does not start with Signature,
// a chunk parse error annotated with the byte offset it occurred at, or
// ErrMissingTrailer if the last parsed chunk is not IEND.
func Parse(data []byte) (*Png, error) {
	if err := checkSignature(data); err != nil {
		return nil, err
	}

	offs := len(Signature)
	chunks := make([]*Chunk, 0, 4)
	for offs < len(data) {
		c, n, err := ParseChunk(data[offs:])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse chunk at offset=%d", offs)
		}
		chunks = append(chunks, c)
		offs += n
	}

	if len(chunks) == 0 || chunks[len(chunks)-1].Type() != IEND {
		return nil, errors.Wrapf(ErrMissingTrailer,
			"stream of %d chunks does not end with %s", len(chunks), IEND)
	}

	return &Png{chunks: chunks}, nil
}

// Bytes serializes the stream: the signature followed by every chunk in
// sequence order. It is the exact inverse of Parse for valid input.
func (p *Png) Bytes() []byte {
	sz := len(Signature)
	for _, c := range p.chunks {
		sz += chunkOverhead + c.Length()
	}

	buf := make([]byte, 0, sz)
	buf = append(buf, Signature...)
	for _, c := range p.chunks {
		buf = append(buf, c.Bytes()...)
	}
	return buf
}

// Chunks returns the chunks in sequence order. The slice is a copy, the
// chunks are not.
func (p *Png) Chunks() []*Chunk {
	res := make([]*Chunk, len(p.chunks))
	copy(res, p.chunks)
	return res
}

// AppendChunk inserts the chunk immediately before the IEND trailer, or at
// the end of the sequence when there is no trailer yet. Several chunks of
// the same type may coexist, so append never fails on duplicates.
func (p *Png) AppendChunk(c *Chunk) {
	n := len(p.chunks)
	if n > 0 && p.chunks[n-1].Type() == IEND {
		last := p.chunks[n-1]
		p.chunks = append(p.chunks[:n-1], c, last)
		return
	}
	p.chunks = append(p.chunks, c)
}

// ChunkByType returns the first chunk of the type provided, in sequence
// order, or nil if there is no such chunk
func (p *Png) ChunkByType(ct ChunkType) *Chunk {
	for _, c := range p.chunks {
		if c.Type() == ct {
			return c
		}
	}
	return nil
}

// RemoveChunkByType removes and returns the first chunk of the type
// provided. It returns ErrProtectedChunk for the structural IHDR and IEND
// types whatever the stream contents are, and ErrChunkNotFound when no
// chunk matches.
func (p *Png) RemoveChunkByType(ct ChunkType) (*Chunk, error) {
	if ct == IHDR || ct == IEND {
		return nil, errors.Wrapf(ErrProtectedChunk, "type=%s must not be removed", ct)
	}

	for i, c := range p.chunks {
		if c.Type() == ct {
			p.chunks = append(p.chunks[:i], p.chunks[i+1:]...)
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrChunkNotFound, "type=%s", ct)
}

// RemoveChunk removes the chunk at position i keeping the rest of the
// sequence order. The structural IHDR and IEND positions are protected.
func (p *Png) RemoveChunk(i int) error {
	if i < 0 || i >= len(p.chunks) {
		return fmt.Errorf("invalid chunk index=%d, must be in [0..%d)", i, len(p.chunks))
	}
	if t := p.chunks[i].Type(); t == IHDR || t == IEND {
		return errors.Wrapf(ErrProtectedChunk, "type=%s must not be removed", t)
	}
	p.chunks = append(p.chunks[:i], p.chunks[i+1:]...)
	return nil
}

// ReplaceChunk substitutes the chunk at position i keeping the sequence
// order. The structural IHDR and IEND positions are protected.
func (p *Png) ReplaceChunk(i int, c *Chunk) error {
	if i < 0 || i >= len(p.chunks) {
		return fmt.Errorf("invalid chunk index=%d, must be in [0..%d)", i, len(p.chunks))
	}
	if t := p.chunks[i].Type(); t == IHDR || t == IEND {
		return errors.Wrapf(ErrProtectedChunk, "type=%s must not be replaced", t)
	}
	p.chunks[i] = c
	return nil
}

// Infos returns summaries for all chunks in sequence order together with
// the byte offset each chunk starts at in the serialized stream
func (p *Png) Infos() []ChunkInfo {
	res := make([]ChunkInfo, len(p.chunks))
	offs := int64(len(Signature))
	for i, c := range p.chunks {
		ct := c.Type()
		res[i] = ChunkInfo{
			Index:      i,
			Offset:     offs,
			Type:       ct.String(),
			Length:     c.Length(),
			Crc:        c.Crc(),
			Critical:   ct.IsCritical(),
			Public:     ct.IsPublic(),
			Valid:      ct.IsValid(),
			SafeToCopy: ct.IsSafeToCopy(),
		}
		offs += int64(chunkOverhead + c.Length())
	}
	return res
}

func (p *Png) String() string {
	return fmt.Sprintf("{chunks: %d, size: %d}", len(p.chunks), len(p.Bytes()))
}
