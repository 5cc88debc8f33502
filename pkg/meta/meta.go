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

// Package meta reads and writes tEXt chunks, the standard place for
// textual key-value metadata in a png stream. A tEXt payload is
// keyword ++ 0x00 ++ text, where the keyword is 1..79 printable
// Latin-1 bytes without leading or trailing spaces.
package meta

import (
	"fmt"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/kr/logfmt"
	"github.com/pkg/errors"
	"strings"
)

type (
	// Entry is one key-value metadata pair
	Entry struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}

	// argsCollector receives key-value pairs from the logfmt scanner
	// keeping their input order. A repeated key updates the value in
	// place, so the order stays stable.
	argsCollector struct {
		entries []Entry
		index   map[string]int
	}
)

// TextType is the chunk type the metadata pairs are kept in
var TextType = png.ChunkType{'t', 'E', 'X', 't'}

// MaxKeywordLen limits the keyword part of a tEXt payload
const MaxKeywordLen = 79

// Build forms a tEXt payload from the key and value provided. It returns
// ErrEncoding if the keyword breaks the format rules or the value
// contains a NUL byte.
func Build(key, value string) ([]byte, error) {
	if err := checkKeyword(key); err != nil {
		return nil, err
	}
	if strings.IndexByte(value, 0) >= 0 {
		return nil, errors.Wrapf(png.ErrEncoding,
			"tEXt value for keyword=%s must not contain NUL bytes", key)
	}

	buf := make([]byte, 0, len(key)+1+len(value))
	buf = append(buf, key...)
	buf = append(buf, 0)
	buf = append(buf, value...)
	return buf, nil
}

// Parse splits a tEXt payload into its keyword and text parts. It returns
// ErrEncoding if there is no NUL separator or the keyword part breaks the
// format rules.
func Parse(payload []byte) (string, string, error) {
	sep := -1
	for i, b := range payload {
		if b == 0 {
			sep = i
			break
		}
	}
	if sep < 0 {
		return "", "", errors.Wrapf(png.ErrEncoding,
			"tEXt payload of %d bytes has no keyword separator", len(payload))
	}

	key := string(payload[:sep])
	if err := checkKeyword(key); err != nil {
		return "", "", err
	}
	return key, string(payload[sep+1:]), nil
}

// ParseArgs parses a "k1=v1 k2=v2 ..." line into entries keeping the input
// order. Values may be double-quoted to contain spaces.
func ParseArgs(line string) ([]Entry, error) {
	ac := &argsCollector{index: make(map[string]int)}
	err := logfmt.Unmarshal([]byte(line), ac)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key-value pairs from %q, err=%v", line, err)
	}
	return ac.entries, nil
}

func (ac *argsCollector) HandleLogfmt(key, val []byte) error {
	k := string(key)
	if i, ok := ac.index[k]; ok {
		ac.entries[i].Value = string(val)
		return nil
	}
	ac.index[k] = len(ac.entries)
	ac.entries = append(ac.entries, Entry{Key: k, Value: string(val)})
	return nil
}

// List returns all metadata pairs of p in chunk sequence order
func List(p *png.Png) ([]Entry, error) {
	var res []Entry
	for _, c := range p.Chunks() {
		if c.Type() != TextType {
			continue
		}
		k, v, err := Parse(c.Data())
		if err != nil {
			return nil, err
		}
		res = append(res, Entry{Key: k, Value: v})
	}
	return res, nil
}

// Get returns the value of the first metadata pair with the key provided,
// or ErrChunkNotFound
func Get(p *png.Png, key string) (string, error) {
	for _, c := range p.Chunks() {
		if c.Type() != TextType {
			continue
		}
		k, v, err := Parse(c.Data())
		if err != nil {
			return "", err
		}
		if k == key {
			return v, nil
		}
	}
	return "", errors.Wrapf(png.ErrChunkNotFound, "no tEXt chunk with keyword=%s", key)
}

// Set writes the entries into p one by one. An entry whose key is already
// present replaces the first matching chunk in its position, a new key is
// appended before the trailer.
func Set(p *png.Png, entries []Entry) error {
	for _, e := range entries {
		payload, err := Build(e.Key, e.Value)
		if err != nil {
			return err
		}

		c := png.NewChunk(TextType, payload)
		if idx := indexOf(p, e.Key); idx >= 0 {
			err = p.ReplaceChunk(idx, c)
		} else {
			p.AppendChunk(c)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the first metadata pair with the key provided, or returns
// ErrChunkNotFound
func Delete(p *png.Png, key string) error {
	idx := indexOf(p, key)
	if idx < 0 {
		return errors.Wrapf(png.ErrChunkNotFound, "no tEXt chunk with keyword=%s", key)
	}
	return p.RemoveChunk(idx)
}

// indexOf finds the first tEXt chunk with the keyword provided. Chunks
// whose payload cannot be parsed do not match.
func indexOf(p *png.Png, key string) int {
	for i, c := range p.Chunks() {
		if c.Type() != TextType {
			continue
		}
		if k, _, err := Parse(c.Data()); err == nil && k == key {
			return i
		}
	}
	return -1
}

func checkKeyword(key string) error {
	if len(key) == 0 || len(key) > MaxKeywordLen {
		return errors.Wrapf(png.ErrEncoding,
			"tEXt keyword must be 1..%d bytes long, but it is %d", MaxKeywordLen, len(key))
	}
	if key[0] == ' ' || key[len(key)-1] == ' ' {
		return errors.Wrapf(png.ErrEncoding,
			"tEXt keyword %q must not have leading or trailing spaces", key)
	}
	for i := 0; i < len(key); i++ {
		b := key[i]
		if b < 32 || (b > 126 && b < 161) {
			return errors.Wrapf(png.ErrEncoding,
				"tEXt keyword byte #%d is 0x%02x, must be printable Latin-1", i, b)
		}
	}
	return nil
}
