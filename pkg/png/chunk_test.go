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
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"testing"
)

const (
	testMsg = "This is where your secret message will be!"
	testCrc = uint32(2882656334)
)

func TestNewChunk(t *testing.T) {
	c := testChunk(t)
	assert.Equal(t, "RuSt", c.Type().String())
	assert.Equal(t, 42, c.Length())
	assert.Equal(t, testCrc, c.Crc())
	assert.Equal(t, []byte(testMsg), c.Data())
}

func TestChunkParse(t *testing.T) {
	c, n, err := ParseChunk(testChunkBytes())
	assert.NoError(t, err)
	assert.Equal(t, 54, n)
	assert.Equal(t, "RuSt", c.Type().String())
	assert.Equal(t, 42, c.Length())
	assert.Equal(t, testCrc, c.Crc())

	txt, err := c.Text()
	assert.NoError(t, err)
	assert.Equal(t, testMsg, txt)
}

func TestChunkRoundTrip(t *testing.T) {
	c := testChunk(t)
	c2, n, err := ParseChunk(c.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, chunkOverhead+c.Length(), n)
	assert.Equal(t, c.Bytes(), c2.Bytes())
	assert.Equal(t, c.Crc(), c2.Crc())
}

func TestChunkParseTruncated(t *testing.T) {
	buf := testChunkBytes()
	for _, cut := range []int{0, 1, 7, 8, 20, len(buf) - 1} {
		_, _, err := ParseChunk(buf[:cut])
		assert.True(t, errors.Is(err, ErrUnexpectedEof), "cut=%d, err=%v", cut, err)
	}
}

func TestChunkParseBadType(t *testing.T) {
	buf := testChunkBytes()
	buf[5] = '1'
	_, _, err := ParseChunk(buf)
	assert.True(t, errors.Is(err, ErrInvalidChunkType), "err=%v", err)
}

func TestChunkParseBadCrc(t *testing.T) {
	buf := testChunkBytes()
	buf[len(buf)-1] ^= 0x01
	_, _, err := ParseChunk(buf)
	assert.True(t, errors.Is(err, ErrCrcMismatch), "err=%v", err)
}

func TestChunkCrcPayloadSensitivity(t *testing.T) {
	// flipping any single payload bit must break the checksum
	for idx := 8; idx < 8+len(testMsg); idx++ {
		for bit := uint(0); bit < 8; bit++ {
			buf := testChunkBytes()
			buf[idx] ^= 1 << bit
			_, _, err := ParseChunk(buf)
			assert.True(t, errors.Is(err, ErrCrcMismatch), "idx=%d, bit=%d, err=%v", idx, bit, err)
		}
	}
}

func TestChunkCrcTypeSensitivity(t *testing.T) {
	// a case flip keeps the type constructible, but breaks the checksum
	buf := testChunkBytes()
	buf[4] ^= propertyBit
	_, _, err := ParseChunk(buf)
	assert.True(t, errors.Is(err, ErrCrcMismatch), "err=%v", err)

	// a change to a non-letter byte fails earlier, on the type itself
	buf = testChunkBytes()
	buf[4] = '0'
	_, _, err = ParseChunk(buf)
	assert.True(t, errors.Is(err, ErrInvalidChunkType), "err=%v", err)
}

func TestChunkTextInvalid(t *testing.T) {
	ct, err := ParseChunkType("RuSt")
	assert.NoError(t, err)

	c := NewChunk(ct, []byte{0xc3, 0x28})
	_, err = c.Text()
	assert.True(t, errors.Is(err, ErrEncoding), "err=%v", err)
}

func TestChunkEmptyPayload(t *testing.T) {
	ct, err := ParseChunkType("RuSt")
	assert.NoError(t, err)

	c := NewChunk(ct, nil)
	assert.Equal(t, 0, c.Length())
	assert.Equal(t, chunkOverhead, len(c.Bytes()))

	c2, n, err := ParseChunk(c.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, chunkOverhead, n)
	assert.Equal(t, c.Crc(), c2.Crc())
}

func TestChunkOwnsData(t *testing.T) {
	ct, err := ParseChunkType("RuSt")
	assert.NoError(t, err)

	src := []byte("abcd")
	c := NewChunk(ct, src)
	src[0] = 'X'
	assert.Equal(t, []byte("abcd"), c.Data())

	d := c.Data()
	d[1] = 'Y'
	assert.Equal(t, []byte("abcd"), c.Data())
}

func TestChunkString(t *testing.T) {
	c := testChunk(t)
	exp := fmt.Sprintf("{type: RuSt, length: 42, crc: 0x%08x}", testCrc)
	assert.Equal(t, exp, c.String())
}

func testChunk(t *testing.T) *Chunk {
	ct, err := ParseChunkType("RuSt")
	assert.NoError(t, err)
	return NewChunk(ct, []byte(testMsg))
}

func testChunkBytes() []byte {
	data := []byte(testMsg)
	buf := make([]byte, 0, chunkOverhead+len(data))

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(data)))
	buf = append(buf, u32[:]...)
	buf = append(buf, []byte("RuSt")...)
	buf = append(buf, data...)
	binary.BigEndian.PutUint32(u32[:], testCrc)
	buf = append(buf, u32[:]...)
	return buf
}
