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
	"github.com/pkg/errors"
)

type (
	// ChunkType is a 4-byte chunk type code. Every byte must be an ascii
	// letter (A-Z or a-z); the case of each byte encodes one property flag,
	// tested via bit 5 (0x20) of the byte. Comparison is byte-exact, no
	// case folding happens anywhere.
	ChunkType [4]byte
)

// property bit per the chunk naming conventions
const propertyBit = byte(0x20)

var (
	// structural chunk types of the container
	IHDR = ChunkType{'I', 'H', 'D', 'R'}
	PLTE = ChunkType{'P', 'L', 'T', 'E'}
	IDAT = ChunkType{'I', 'D', 'A', 'T'}
	IEND = ChunkType{'I', 'E', 'N', 'D'}
)

// NewChunkType creates ChunkType from the 4 bytes provided. It returns
// ErrInvalidChunkType if any of the bytes is not an ascii letter. A type
// with an invalid reserved bit is constructible, it is only reported by
// IsValid() (see IsReservedBitValid).
func NewChunkType(b [4]byte) (ChunkType, error) {
	for i, bb := range b {
		if !isTypeByte(bb) {
			return ChunkType{}, errors.Wrapf(ErrInvalidChunkType,
				"byte #%d is 0x%02x, must be an ascii letter", i, bb)
		}
	}
	return ChunkType(b), nil
}

// ParseChunkType creates ChunkType from the string provided, which must be
// exactly 4 ascii letters long
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, errors.Wrapf(ErrInvalidChunkType,
			"type code %q must be 4 bytes long, but it is %d", s, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	return NewChunkType(b)
}

// Bytes returns the 4 raw bytes of the type code
func (ct ChunkType) Bytes() [4]byte {
	return [4]byte(ct)
}

// IsCritical reports whether the chunk is critical for displaying the
// image (bit 5 of the first byte is clear)
func (ct ChunkType) IsCritical() bool {
	return ct[0]&propertyBit == 0
}

// IsPublic reports whether the type code belongs to the public registry
// (bit 5 of the second byte is clear)
func (ct ChunkType) IsPublic() bool {
	return ct[1]&propertyBit == 0
}

// IsReservedBitValid reports whether the reserved bit conforms to the
// current container version (bit 5 of the third byte is clear)
func (ct ChunkType) IsReservedBitValid() bool {
	return ct[2]&propertyBit == 0
}

// IsSafeToCopy reports whether editors that do not recognize the chunk may
// copy it to a modified stream (bit 5 of the fourth byte is set)
func (ct ChunkType) IsSafeToCopy() bool {
	return ct[3]&propertyBit != 0
}

// IsValid reports whether the type code is conformant. Only the reserved
// bit takes part here, the byte ranges are already guaranteed by the
// constructors.
func (ct ChunkType) IsValid() bool {
	return ct.IsReservedBitValid()
}

func (ct ChunkType) String() string {
	return string(ct[:])
}

func isTypeByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
