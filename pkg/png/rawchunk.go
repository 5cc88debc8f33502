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
	"github.com/pkg/errors"
)

type (
	// RawChunk is one chunk record as it lies in a serialized stream, read
	// without validating the type bytes or the checksum. Data references
	// the source buffer, it is not a copy.
	RawChunk struct {
		Offset    int64
		TypeBytes [4]byte
		Data      []byte
		StoredCrc uint32
	}
)

// RawChunks splits data into raw chunk records. Only the signature and the
// record framing are checked here, so records with corrupted type bytes or
// checksums are returned as they are. It returns ErrInvalidSignature or
// ErrUnexpectedEof when the framing itself is broken.
func RawChunks(data []byte) ([]RawChunk, error) {
	if err := checkSignature(data); err != nil {
		return nil, err
	}

	res := make([]RawChunk, 0, 4)
	offs := int64(len(Signature))
	for offs < int64(len(data)) {
		buf := data[offs:]
		if len(buf) < 8 {
			return nil, errors.Wrapf(ErrUnexpectedEof,
				"chunk header needs 8 bytes, but %d available at offset=%d", len(buf), offs)
		}

		ln := binary.BigEndian.Uint32(buf)
		if ln > MaxChunkLength {
			return nil, errors.Wrapf(ErrUnexpectedEof,
				"declared length=%d exceeds the maximum=%d at offset=%d", ln, MaxChunkLength, offs)
		}

		need := int64(ln) + chunkOverhead
		if int64(len(buf)) < need {
			return nil, errors.Wrapf(ErrUnexpectedEof,
				"chunk declares %d bytes, but %d available at offset=%d", need, len(buf), offs)
		}

		rc := RawChunk{
			Offset:    offs,
			Data:      buf[8 : 8+int(ln)],
			StoredCrc: binary.BigEndian.Uint32(buf[8+int(ln):]),
		}
		copy(rc.TypeBytes[:], buf[4:8])
		res = append(res, rc)
		offs += need
	}
	return res, nil
}

// ComputedCrc returns the checksum of the type and payload bytes as they
// lie in the stream
func (rc *RawChunk) ComputedCrc() uint32 {
	return crcOf(ChunkType(rc.TypeBytes), rc.Data)
}
