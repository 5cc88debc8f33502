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
	"errors"
	"testing"
)

func TestChunkTypeFromBytes(t *testing.T) {
	ct, err := NewChunkType([4]byte{82, 117, 83, 116})
	if err != nil {
		t.Fatal("must be created ok, but err=", err)
	}
	if ct.String() != "RuSt" {
		t.Fatal("expected RuSt, but got ", ct.String())
	}
	if ct.Bytes() != [4]byte{82, 117, 83, 116} {
		t.Fatal("wrong bytes ", ct.Bytes())
	}
}

func TestChunkTypeFromBytesInvalid(t *testing.T) {
	_, err := NewChunkType([4]byte{82, 117, 49, 116})
	if !errors.Is(err, ErrInvalidChunkType) {
		t.Fatal("expected ErrInvalidChunkType, but err=", err)
	}
}

func TestChunkTypeProperties(t *testing.T) {
	testTypeOk(t, "RuSt", true, false, true, true)
	testTypeOk(t, "ruSt", false, false, true, true)
	testTypeOk(t, "RUSt", true, true, true, true)
	testTypeOk(t, "Rust", true, false, false, true)
	testTypeOk(t, "RuST", true, false, true, false)
	testTypeOk(t, "bLOb", false, true, true, true)
	testTypeOk(t, "IHDR", true, true, true, false)
	testTypeOk(t, "tEXt", false, true, true, true)
}

func TestChunkTypeInvalid(t *testing.T) {
	testTypeErr(t, "Ru1t")
	testTypeErr(t, "Ru t")
	testTypeErr(t, "Ru5T")
	testTypeErr(t, "RuS")
	testTypeErr(t, "RuStt")
	testTypeErr(t, "")
}

func TestChunkTypeIsValid(t *testing.T) {
	ct, err := ParseChunkType("RuSt")
	if err != nil || !ct.IsValid() {
		t.Fatal("RuSt must be valid, but valid=", ct.IsValid(), ", err=", err)
	}

	// the reserved bit makes the type non-conformant, not unconstructible
	ct, err = ParseChunkType("Rust")
	if err != nil {
		t.Fatal("Rust must be created ok, but err=", err)
	}
	if ct.IsValid() {
		t.Fatal("Rust must not be valid")
	}
}

func TestChunkTypeEquality(t *testing.T) {
	ct1, _ := ParseChunkType("RuSt")
	ct2, _ := ParseChunkType("RuSt")
	ct3, _ := ParseChunkType("ruSt")

	if ct1 != ct2 {
		t.Fatal("expected ", ct1, " to be equal to ", ct2)
	}
	if ct1 == ct3 {
		t.Fatal("expected ", ct1, " to differ from ", ct3, ", comparison is case-sensitive")
	}
}

func testTypeOk(t *testing.T, s string, critical, public, valid, safe bool) {
	ct, err := ParseChunkType(s)
	if err != nil {
		t.Fatal("the type '", s, "' must be created ok, but err=", err)
	}
	if ct.IsCritical() != critical {
		t.Fatal("expected critical=", critical, " for '", s, "', but got ", ct.IsCritical())
	}
	if ct.IsPublic() != public {
		t.Fatal("expected public=", public, " for '", s, "', but got ", ct.IsPublic())
	}
	if ct.IsReservedBitValid() != valid {
		t.Fatal("expected valid=", valid, " for '", s, "', but got ", ct.IsReservedBitValid())
	}
	if ct.IsSafeToCopy() != safe {
		t.Fatal("expected safe=", safe, " for '", s, "', but got ", ct.IsSafeToCopy())
	}
}

func testTypeErr(t *testing.T, s string) {
	if _, err := ParseChunkType(s); !errors.Is(err, ErrInvalidChunkType) {
		t.Fatal("the type '", s, "' must not be created, but err=", err)
	}
}
