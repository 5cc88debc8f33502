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
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/stretchr/testify/assert"
	"testing"
)

func mustType(t *testing.T, s string) png.ChunkType {
	ct, err := png.ParseChunkType(s)
	assert.NoError(t, err)
	return ct
}

func testOpsPng(t *testing.T) *png.Png {
	return png.New([]*png.Chunk{
		png.NewChunk(png.IHDR, make([]byte, 13)),
		png.NewChunk(mustType(t, "teXt"), []byte("some text")),
		png.NewChunk(png.IEND, nil),
	})
}

func TestEncodeDecode(t *testing.T) {
	p := testOpsPng(t)
	err := Encode(p, "ruSt", []byte("hello"), false)
	assert.NoError(t, err)

	cc := p.Chunks()
	assert.Equal(t, 4, len(cc))
	assert.Equal(t, png.IEND, cc[3].Type())

	msg, err := Decode(p, "ruSt")
	assert.NoError(t, err)
	assert.Equal(t, "hello", msg)
}

func TestEncodeDecodeRemove(t *testing.T) {
	p := testOpsPng(t)
	assert.NoError(t, Encode(p, "teSt", []byte("hi"), false))

	msg, err := Decode(p, "teSt")
	assert.NoError(t, err)
	assert.Equal(t, "hi", msg)

	c, err := Remove(p, "teSt")
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(c.Data()))

	_, err = Decode(p, "teSt")
	assert.True(t, errors.Is(err, png.ErrChunkNotFound))
}

func TestEncodeSurvivesRoundTrip(t *testing.T) {
	p := testOpsPng(t)
	assert.NoError(t, Encode(p, "ruSt", []byte("hello"), false))

	p2, err := png.Parse(p.Bytes())
	assert.NoError(t, err)

	msg, err := Decode(p2, "ruSt")
	assert.NoError(t, err)
	assert.Equal(t, "hello", msg)
}

func TestEncodeInvalidType(t *testing.T) {
	p := testOpsPng(t)
	for _, ctype := range []string{"Ru1t", "abc", "abcde", ""} {
		err := Encode(p, ctype, []byte("x"), false)
		if !errors.Is(err, png.ErrInvalidChunkType) {
			t.Fatal("expecting invalid chunk type for ", ctype, ", but got err=", err)
		}
	}
	assert.Equal(t, 3, len(p.Chunks()))
}

func TestEncodeProtectedTarget(t *testing.T) {
	p := testOpsPng(t)
	for _, ctype := range []string{"IHDR", "PLTE", "IDAT", "IEND"} {
		err := Encode(p, ctype, []byte("x"), false)
		if !errors.Is(err, png.ErrProtectedChunk) {
			t.Fatal("expecting protected chunk error for ", ctype, ", but got err=", err)
		}
	}
}

func TestEncodeReservedBit(t *testing.T) {
	p := testOpsPng(t)

	err := Encode(p, "Rust", []byte("x"), false)
	assert.True(t, errors.Is(err, png.ErrInvalidChunkType))

	err = Encode(p, "Rust", []byte("x"), true)
	assert.NoError(t, err)

	msg, err := Decode(p, "Rust")
	assert.NoError(t, err)
	assert.Equal(t, "x", msg)
}

func TestDecodeNotFound(t *testing.T) {
	_, err := Decode(testOpsPng(t), "ruSt")
	assert.True(t, errors.Is(err, png.ErrChunkNotFound))
}

func TestDecodeBinaryPayload(t *testing.T) {
	p := testOpsPng(t)
	p.AppendChunk(png.NewChunk(mustType(t, "ruSt"), []byte{0xc3, 0x28}))

	_, err := Decode(p, "ruSt")
	assert.True(t, errors.Is(err, png.ErrEncoding))
}

func TestRemoveProtected(t *testing.T) {
	p := testOpsPng(t)
	_, err := Remove(p, "IEND")
	assert.True(t, errors.Is(err, png.ErrProtectedChunk))

	_, err = Remove(p, "IHDR")
	assert.True(t, errors.Is(err, png.ErrProtectedChunk))
}

func TestRemoveNotFound(t *testing.T) {
	_, err := Remove(testOpsPng(t), "ruSt")
	assert.True(t, errors.Is(err, png.ErrChunkNotFound))
}

func TestListAll(t *testing.T) {
	infos := List(testOpsPng(t), nil)
	assert.Equal(t, 3, len(infos))
	assert.Equal(t, "IHDR", infos[0].Type)
	assert.Equal(t, "IEND", infos[2].Type)
}

func TestListFiltered(t *testing.T) {
	p := testOpsPng(t)
	assert.NoError(t, Encode(p, "ruSt", []byte("hello"), false))

	flt, err := pql.BuildChunkExpFunc("critical = false AND len > 0")
	assert.NoError(t, err)

	infos := List(p, flt)
	assert.Equal(t, 2, len(infos))
	assert.Equal(t, "teXt", infos[0].Type)
	assert.Equal(t, "ruSt", infos[1].Type)
}
