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

package pql

import (
	"fmt"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/logrange/range/pkg/utils/bytes"
	"path"
	"strconv"
	"strings"
)

type (
	// ChunkExpFunc returns true if the provided chunk matches the condition
	ChunkExpFunc func(c *png.Chunk) bool

	chunkExpFuncBuilder struct {
		cef ChunkExpFunc
	}

	strValF  func(c *png.Chunk) string
	numValF  func(c *png.Chunk) uint64
	flagValF func(c *png.Chunk) bool
)

var positiveChunkExpFunc = func(*png.Chunk) bool { return true }

// BuildChunkExpFunc builds the filter function by the condition human
// readable form like `type = RuSt AND len > 10`
func BuildChunkExpFunc(where string) (ChunkExpFunc, error) {
	exp, err := ParseExpr(where)
	if err != nil {
		return nil, err
	}
	return BuildChunkExpFuncByExpression(exp)
}

// BuildChunkExpFuncByExpression builds the filter function by the Expression provided
func BuildChunkExpFuncByExpression(exp *Expression) (ChunkExpFunc, error) {
	if exp == nil {
		return positiveChunkExpFunc, nil
	}

	var ceb chunkExpFuncBuilder
	err := ceb.buildOrConds(exp.Or)
	if err != nil {
		return nil, err
	}

	return ceb.cef, nil
}

func (ceb *chunkExpFuncBuilder) buildOrConds(ocn []*OrCondition) error {
	if len(ocn) == 0 {
		ceb.cef = positiveChunkExpFunc
		return nil
	}

	err := ceb.buildXConds(ocn[0].And)
	if err != nil {
		return err
	}

	if len(ocn) == 1 {
		// no need to go ahead anymore
		return nil
	}

	efd0 := ceb.cef
	err = ceb.buildOrConds(ocn[1:])
	if err != nil {
		return err
	}
	efd1 := ceb.cef

	ceb.cef = func(c *png.Chunk) bool { return efd0(c) || efd1(c) }
	return nil
}

func (ceb *chunkExpFuncBuilder) buildXConds(cn []*XCondition) (err error) {
	if len(cn) == 0 {
		ceb.cef = positiveChunkExpFunc
		return nil
	}

	if len(cn) == 1 {
		return ceb.buildXCond(cn[0])
	}

	err = ceb.buildXCond(cn[0])
	if err != nil {
		return err
	}

	efd0 := ceb.cef
	err = ceb.buildXConds(cn[1:])
	if err != nil {
		return err
	}
	efd1 := ceb.cef

	ceb.cef = func(c *png.Chunk) bool { return efd0(c) && efd1(c) }
	return nil
}

func (ceb *chunkExpFuncBuilder) buildXCond(xc *XCondition) (err error) {
	if xc.Expr != nil {
		err = ceb.buildOrConds(xc.Expr.Or)
	} else {
		err = ceb.buildCond(xc.Cond)
	}

	if err != nil {
		return err
	}

	if xc.Not {
		efd1 := ceb.cef
		ceb.cef = func(c *png.Chunk) bool { return !efd1(c) }
		return nil
	}

	return nil
}

func (ceb *chunkExpFuncBuilder) buildCond(cn *Condition) (err error) {
	switch strings.ToLower(cn.Operand) {
	case OPND_TYPE:
		return ceb.buildStrCond(cn, func(c *png.Chunk) string { return c.Type().String() })
	case OPND_DATA:
		return ceb.buildStrCond(cn, func(c *png.Chunk) string { return bytes.ByteArrayToString(c.Data()) })
	case OPND_LENGTH:
		return ceb.buildNumCond(cn, func(c *png.Chunk) uint64 { return uint64(c.Length()) })
	case OPND_CRC:
		return ceb.buildNumCond(cn, func(c *png.Chunk) uint64 { return uint64(c.Crc()) })
	case OPND_CRITICAL:
		return ceb.buildFlagCond(cn, func(c *png.Chunk) bool { return c.Type().IsCritical() })
	case OPND_PUBLIC:
		return ceb.buildFlagCond(cn, func(c *png.Chunk) bool { return c.Type().IsPublic() })
	case OPND_VALID:
		return ceb.buildFlagCond(cn, func(c *png.Chunk) bool { return c.Type().IsValid() })
	case OPND_SAFE:
		return ceb.buildFlagCond(cn, func(c *png.Chunk) bool { return c.Type().IsSafeToCopy() })
	}
	return fmt.Errorf("unknown operand %q, expecting one of type, data, len, crc, critical, public, valid or safe", cn.Operand)
}

func (ceb *chunkExpFuncBuilder) buildStrCond(cn *Condition, vf strValF) (err error) {
	op := strings.ToUpper(cn.Op)
	val := cn.Value

	switch op {
	case CMP_CONTAINS:
		ceb.cef = func(c *png.Chunk) bool {
			return strings.Contains(vf(c), val)
		}
	case CMP_HAS_PREFIX:
		ceb.cef = func(c *png.Chunk) bool {
			return strings.HasPrefix(vf(c), val)
		}
	case CMP_HAS_SUFFIX:
		ceb.cef = func(c *png.Chunk) bool {
			return strings.HasSuffix(vf(c), val)
		}
	case CMP_LIKE:
		// test the pattern first
		if _, merr := path.Match(val, "abc"); merr != nil {
			err = fmt.Errorf("uncompilable 'like' expression for %q, expected a shell pattern (not regexp) err=%s", val, merr.Error())
		} else {
			ceb.cef = func(c *png.Chunk) bool {
				res, _ := path.Match(val, vf(c))
				return res
			}
		}
	case "=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) == val
		}
	case "!=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) != val
		}
	case ">":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) > val
		}
	case "<":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) < val
		}
	case ">=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) >= val
		}
	case "<=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) <= val
		}
	default:
		err = fmt.Errorf("unsupported operation %q for field %s", cn.Op, cn.Operand)
	}
	return err
}

func (ceb *chunkExpFuncBuilder) buildNumCond(cn *Condition, vf numValF) (err error) {
	// base 0, so both decimal and 0x prefixed values work
	val, err := strconv.ParseUint(cn.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("could not parse %q as a number for field %s: %s", cn.Value, cn.Operand, err.Error())
	}

	switch cn.Op {
	case "=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) == val
		}
	case "!=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) != val
		}
	case ">":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) > val
		}
	case "<":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) < val
		}
	case ">=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) >= val
		}
	case "<=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) <= val
		}
	default:
		err = fmt.Errorf("unsupported operation %q for numeric field %s", cn.Op, cn.Operand)
	}
	return err
}

func (ceb *chunkExpFuncBuilder) buildFlagCond(cn *Condition, vf flagValF) (err error) {
	var val bool
	switch strings.ToLower(cn.Value) {
	case "true":
		val = true
	case "false":
		val = false
	default:
		return fmt.Errorf("could not parse %q for flag %s, must be true or false", cn.Value, cn.Operand)
	}

	switch cn.Op {
	case "=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) == val
		}
	case "!=":
		ceb.cef = func(c *png.Chunk) bool {
			return vf(c) != val
		}
	default:
		err = fmt.Errorf("unsupported operation %q for flag %s, must be = or !=", cn.Op, cn.Operand)
	}
	return err
}
