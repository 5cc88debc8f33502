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
	"fmt"
)

var (
	// ErrInvalidChunkType indicates that a chunk type code contains a byte
	// outside of the ascii letter ranges
	ErrInvalidChunkType = fmt.Errorf("invalid chunk type")

	// ErrCrcMismatch indicates that a stored chunk checksum disagrees with
	// the one computed over the chunk type and payload
	ErrCrcMismatch = fmt.Errorf("crc mismatch")

	// ErrUnexpectedEof indicates that the stream ends before the bytes a
	// chunk declares are available
	ErrUnexpectedEof = fmt.Errorf("unexpected end of stream")

	// ErrInvalidSignature indicates that the stream does not start with the
	// png signature
	ErrInvalidSignature = fmt.Errorf("invalid png signature")

	// ErrMissingTrailer indicates that the last chunk of the stream is not
	// the IEND trailer
	ErrMissingTrailer = fmt.Errorf("missing trailer chunk")

	// ErrChunkNotFound indicates that no chunk of the requested type exists
	ErrChunkNotFound = fmt.Errorf("chunk not found")

	// ErrProtectedChunk indicates an attempt to edit a structural chunk
	ErrProtectedChunk = fmt.Errorf("protected chunk")

	// ErrEncoding indicates that a payload is not valid text
	ErrEncoding = fmt.Errorf("payload is not valid text")
)
