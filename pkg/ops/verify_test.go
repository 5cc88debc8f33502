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
	"errors"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/stretchr/testify/assert"
	"testing"
)

// the test stream layout: IHDR at offset=8, teXt at offset=33 with the
// payload at 41..49 and the crc at 50..53, IEND at offset=54
func testStream(t *testing.T) []byte {
	return testOpsPng(t).Bytes()
}

func TestVerifyClean(t *testing.T) {
	rep, err := Verify(testStream(t))
	assert.NoError(t, err)
	assert.Equal(t, 3, rep.Total)
	assert.Equal(t, 0, rep.Corrupted)
	assert.True(t, rep.Trailer)

	for _, cc := range rep.Chunks {
		assert.True(t, cc.CrcOk)
		assert.True(t, cc.TypeOk)
		assert.Equal(t, cc.ComputedCrc, cc.StoredCrc)
	}
	assert.Equal(t, int64(8), rep.Chunks[0].Offset)
	assert.Equal(t, int64(33), rep.Chunks[1].Offset)
	assert.Equal(t, "teXt", rep.Chunks[1].Type)
	assert.Equal(t, 9, rep.Chunks[1].Length)
}

func TestVerifyCorruptedPayload(t *testing.T) {
	data := testStream(t)
	data[41] ^= 0x01

	rep, err := Verify(data)
	assert.NoError(t, err)
	assert.Equal(t, 1, rep.Corrupted)

	cc := rep.Chunks[1]
	assert.False(t, cc.CrcOk)
	assert.True(t, cc.TypeOk)
	assert.NotEqual(t, cc.StoredCrc, cc.ComputedCrc)
}

func TestVerifyCorruptedType(t *testing.T) {
	data := testStream(t)
	data[37] = '1'

	rep, err := Verify(data)
	assert.NoError(t, err)
	assert.Equal(t, 1, rep.Corrupted)

	cc := rep.Chunks[1]
	assert.False(t, cc.TypeOk)
	assert.False(t, cc.CrcOk)
	assert.Equal(t, "1eXt", cc.Type)
}

func TestVerifyTruncated(t *testing.T) {
	data := testStream(t)
	_, err := Verify(data[:len(data)-3])
	assert.True(t, errors.Is(err, png.ErrUnexpectedEof))
}

func TestVerifyBadSignature(t *testing.T) {
	data := testStream(t)
	data[0] ^= 0xff
	_, err := Verify(data)
	assert.True(t, errors.Is(err, png.ErrInvalidSignature))
}

func TestVerifyNoTrailer(t *testing.T) {
	p := png.New([]*png.Chunk{png.NewChunk(png.IHDR, make([]byte, 13))})
	rep, err := Verify(p.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, 1, rep.Total)
	assert.False(t, rep.Trailer)
}

func TestFixRepairsCrc(t *testing.T) {
	bad := testStream(t)
	bad[41] ^= 0x01
	orig := append([]byte{}, bad...)

	out, fixed, err := Fix(bad)
	assert.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, orig, bad)
	assert.Equal(t, len(bad), len(out))

	// only the crc field of the damaged chunk may differ
	for i := range bad {
		if bad[i] != out[i] && (i < 50 || i > 53) {
			t.Fatal("byte #", i, " must not differ, only the crc field may")
		}
	}

	_, err = png.Parse(out)
	assert.NoError(t, err)

	rep, err := Verify(out)
	assert.NoError(t, err)
	assert.Equal(t, 0, rep.Corrupted)
}

func TestFixClean(t *testing.T) {
	data := testStream(t)
	out, fixed, err := Fix(data)
	assert.NoError(t, err)
	assert.Equal(t, 0, fixed)
	assert.Equal(t, data, out)
}

func TestFixTruncated(t *testing.T) {
	data := testStream(t)
	_, _, err := Fix(data[:20])
	assert.True(t, errors.Is(err, png.ErrUnexpectedEof))
}
