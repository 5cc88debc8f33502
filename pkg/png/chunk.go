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

package png

import (
	"encoding/binary"
	"fmt"
	"github.com/logrange/range/pkg/utils/bytes"
	"github.com/pkg/errors"
	"hash/crc32"
	"unicode/utf8"
)

type (
	// Chunk is one length-prefixed, typed and checksummed unit of a png
	// stream. A Chunk is immutable after construction, edits produce new
	// chunks. The payload is owned by the chunk and never aliased outside.
	Chunk struct {
		ct   ChunkType
		data []byte
		crc  uint32
	}
)

const (
	// MaxChunkLength is the largest payload length a chunk may declare
	MaxChunkLength = 1<<31 - 1

	// chunkOverhead is the serialized size of the length, type and crc fields
	chunkOverhead = 12
)

// NewChunk creates a new Chunk from the type and the payload provided. The
// payload bytes are copied and the checksum over type and payload is
// computed right away.
func NewChunk(ct ChunkType, data []byte) *Chunk {
	c := new(Chunk)
	c.ct = ct
	c.data = bytes.BytesCopy(data)
	c.crc = crcOf(ct, c.data)
	return c
}

// ParseChunk reads one chunk from the beginning of buf. It returns the
// chunk and the number of bytes consumed (12 + payload length), or an
// error: ErrUnexpectedEof if buf holds fewer bytes than the chunk declares,
// ErrInvalidChunkType if the type bytes are out of range, or ErrCrcMismatch
// if the stored checksum disagrees with the computed one.
func ParseChunk(buf []byte) (*Chunk, int, error) {
	if len(buf) < 8 {
		return nil, 0, errors.Wrapf(ErrUnexpectedEof,
			"chunk header needs 8 bytes, but %d available", len(buf))
	}

	ln := binary.BigEndian.Uint32(buf)
	if ln > MaxChunkLength {
		return nil, 0, errors.Wrapf(ErrUnexpectedEof,
			"declared length=%d exceeds the maximum=%d", ln, MaxChunkLength)
	}

	need := int64(ln) + chunkOverhead
	if int64(len(buf)) < need {
		return nil, 0, errors.Wrapf(ErrUnexpectedEof,
			"chunk declares %d bytes, but %d available", need, len(buf))
	}

	var tb [4]byte
	copy(tb[:], buf[4:8])
	ct, err := NewChunkType(tb)
	if err != nil {
		return nil, 0, err
	}

	data := bytes.BytesCopy(buf[8 : 8+int(ln)])
	stored := binary.BigEndian.Uint32(buf[8+int(ln):])
	if computed := crcOf(ct, data); stored != computed {
		return nil, 0, errors.Wrapf(ErrCrcMismatch,
			"type=%s, stored crc=0x%08x, computed crc=0x%08x", ct, stored, computed)
	}

	return &Chunk{ct: ct, data: data, crc: stored}, int(need), nil
}

// Type returns the chunk type code
func (c *Chunk) Type() ChunkType {
	return c.ct
}

// Length returns the payload length in bytes
func (c *Chunk) Length() int {
	return len(c.data)
}

// Data returns a copy of the payload
func (c *Chunk) Data() []byte {
	return bytes.BytesCopy(c.data)
}

// Crc returns the checksum stored for the chunk. It always equals the
// CRC-32 (IEEE) computed over the type bytes followed by the payload.
func (c *Chunk) Crc() uint32 {
	return c.crc
}

// Text interprets the payload as text. It returns ErrEncoding if the
// payload is not valid utf-8.
func (c *Chunk) Text() (string, error) {
	if !utf8.Valid(c.data) {
		return "", errors.Wrapf(ErrEncoding, "payload of type=%s is not valid utf-8", c.ct)
	}
	return string(c.data), nil
}

// Bytes serializes the chunk: big-endian length, type, payload and
// big-endian crc. It is the exact inverse of ParseChunk for valid input.
func (c *Chunk) Bytes() []byte {
	buf := make([]byte, chunkOverhead+len(c.data))
	binary.BigEndian.PutUint32(buf, uint32(len(c.data)))
	copy(buf[4:8], c.ct[:])
	copy(buf[8:], c.data)
	binary.BigEndian.PutUint32(buf[8+len(c.data):], c.crc)
	return buf
}

func (c *Chunk) String() string {
	return fmt.Sprintf("{type: %s, length: %d, crc: 0x%08x}", c.ct, len(c.data), c.crc)
}

func crcOf(ct ChunkType, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(ct[:])
	h.Write(data)
	return h.Sum32()
}
