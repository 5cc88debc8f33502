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

// Package scan finds png streams on the file system and lists their
// chunks through a renderer. Files are recognized by their content, the
// extension only narrows the candidate set.
package scan

import (
	"bytes"
	"context"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/gabebw/pngme/pkg/ops"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/gabebw/pngme/pkg/render"
	"github.com/gabebw/pngme/pkg/utils"
	"github.com/jrivets/log4g"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

type (
	// Scanner walks the directory tree under Config.Root and reports
	// every png stream it finds there
	Scanner struct {
		cfg    *Config
		flt    pql.ChunkExpFunc
		exts   map[string]bool
		logger log4g.Logger
	}

	// Stats summarizes one scan run
	Stats struct {
		Files   int64 `json:"files"`
		Matched int64 `json:"matched"`
		Chunks  int64 `json:"chunks"`
		Skipped int64 `json:"skipped"`
	}
)

//===================== scanner =====================

func NewScanner(cfg *Config) (*Scanner, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	s := new(Scanner)
	s.cfg = deepcopy.Copy(cfg).(*Config)
	s.logger = log4g.GetLogger("scan")

	if s.cfg.Where != "" {
		flt, err := pql.BuildChunkExpFunc(s.cfg.Where)
		if err != nil {
			return nil, err
		}
		s.flt = flt
	}

	s.exts = make(map[string]bool, len(s.cfg.FollowExt))
	for _, e := range s.cfg.FollowExt {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if e[0] != '.' {
			e = "." + e
		}
		s.exts[e] = true
	}
	return s, nil
}

// Run walks the tree and writes one header line per matched file followed
// by its rendered chunk listing, with a totals line at the end. Files that
// cannot be read or parsed are logged and counted, never fatal; a root
// that cannot be walked is. Cancelling ctx stops the walk.
func (s *Scanner) Run(ctx context.Context, rnd render.Renderer, w io.Writer) (*Stats, error) {
	s.logger.Info("Scanning, config=", s.cfg)
	st := new(Stats)

	err := filepath.Walk(s.cfg.Root, func(path string, info os.FileInfo, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == s.cfg.Root {
				return errors.Wrapf(err, "failed to scan root=%s", path)
			}
			s.logger.Warn("Skipping path=", path, "; cause: ", err)
			st.Skipped++
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		st.Files++
		return s.scanFile(path, rnd, w, st)
	})
	if err != nil {
		return st, err
	}

	_, err = fmt.Fprintf(w, "%v file(s) scanned, %v matched, %v chunk(s) listed, %v skipped\n",
		humanize.Comma(st.Files), humanize.Comma(st.Matched),
		humanize.Comma(st.Chunks), humanize.Comma(st.Skipped))
	return st, err
}

func (s *Scanner) scanFile(path string, rnd render.Renderer, w io.Writer, st *Stats) error {
	if len(s.exts) > 0 && !s.exts[strings.ToLower(filepath.Ext(path))] {
		return nil
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		s.logger.Warn("Skipping file=", path, ", unable to read it; cause: ", err)
		st.Skipped++
		return nil
	}
	if !bytes.HasPrefix(data, png.Signature) {
		return nil
	}

	p, err := png.Parse(data)
	if err != nil {
		s.logger.Warn("Skipping file=", path, ", broken png stream; cause: ", err)
		st.Skipped++
		return nil
	}

	infos := ops.List(p, s.flt)
	if len(infos) == 0 {
		return nil
	}

	st.Matched++
	st.Chunks += int64(len(infos))

	if _, err = fmt.Fprintf(w, "%s:\n", path); err != nil {
		return err
	}
	return rnd.Render(infos)
}

func (st *Stats) String() string {
	return utils.ToJsonStr(st)
}
