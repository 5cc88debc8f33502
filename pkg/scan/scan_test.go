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

package scan

import (
	"bytes"
	"context"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/render"
	"github.com/stretchr/testify/assert"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, withSecret bool) []byte {
	chunks := []*png.Chunk{png.NewChunk(png.IHDR, make([]byte, 13))}
	if withSecret {
		ct, err := png.ParseChunkType("RuSt")
		assert.NoError(t, err)
		chunks = append(chunks, png.NewChunk(ct, []byte("This is where your secret message will be!")))
	}
	chunks = append(chunks, png.NewChunk(png.IEND, nil))
	return png.New(chunks).Bytes()
}

// the test tree holds two valid png streams (a.png with a RuSt chunk and
// sub/b.png without one), a file with no png signature and a truncated
// stream
func testTree(t *testing.T) string {
	dir, err := ioutil.TempDir("", "scan")
	assert.NoError(t, err)

	assert.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0750))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, true), 0640))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, "sub", "b.png"), pngBytes(t, false), 0640))
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, "c.txt"), []byte("just text"), 0640))

	trunc := pngBytes(t, false)
	assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, "d.png"), trunc[:len(trunc)-5], 0640))
	return dir
}

func runScan(t *testing.T, cfg *Config) (*Stats, string) {
	s, err := NewScanner(cfg)
	assert.NoError(t, err)

	var buf bytes.Buffer
	rnd, err := render.NewRenderer(render.NewDefaultConfig(), &buf)
	assert.NoError(t, err)

	st, err := s.Run(context.Background(), rnd, &buf)
	assert.NoError(t, err)
	return st, buf.String()
}

func TestScanAll(t *testing.T) {
	dir := testTree(t)
	defer os.RemoveAll(dir) // clean up

	st, out := runScan(t, &Config{Root: dir})
	assert.Equal(t, int64(4), st.Files)
	assert.Equal(t, int64(2), st.Matched)
	assert.Equal(t, int64(5), st.Chunks)
	assert.Equal(t, int64(1), st.Skipped)

	assert.Contains(t, out, filepath.Join(dir, "a.png")+":\n")
	assert.Contains(t, out, filepath.Join(dir, "sub", "b.png")+":\n")
	assert.Contains(t, out, "RuSt")
	assert.Contains(t, out, "4 file(s) scanned, 2 matched, 5 chunk(s) listed, 1 skipped\n")
}

func TestScanFiltered(t *testing.T) {
	dir := testTree(t)
	defer os.RemoveAll(dir) // clean up

	st, out := runScan(t, &Config{Root: dir, Where: "type = RuSt"})
	assert.Equal(t, int64(1), st.Matched)
	assert.Equal(t, int64(1), st.Chunks)

	assert.Contains(t, out, filepath.Join(dir, "a.png")+":\n")
	assert.NotContains(t, out, "b.png")
}

func TestScanFollowExt(t *testing.T) {
	dir := testTree(t)
	defer os.RemoveAll(dir) // clean up

	// the truncated d.png is not considered at all, so nothing is skipped
	st, _ := runScan(t, &Config{Root: dir, FollowExt: []string{"txt"}})
	assert.Equal(t, int64(0), st.Matched)
	assert.Equal(t, int64(0), st.Skipped)
}

func TestScanBadRoot(t *testing.T) {
	s, err := NewScanner(&Config{Root: "/definitely/not/here"})
	assert.NoError(t, err)

	var buf bytes.Buffer
	rnd, _ := render.NewRenderer(render.NewDefaultConfig(), &buf)
	_, err = s.Run(context.Background(), rnd, &buf)
	assert.Error(t, err)
}

func TestScanCancelled(t *testing.T) {
	dir := testTree(t)
	defer os.RemoveAll(dir) // clean up

	s, err := NewScanner(&Config{Root: dir})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	rnd, _ := render.NewRenderer(render.NewDefaultConfig(), &buf)
	_, err = s.Run(ctx, rnd, &buf)
	assert.Equal(t, context.Canceled, err)
}

func TestScanBadWhere(t *testing.T) {
	_, err := NewScanner(&Config{Root: ".", Where: "nonsense ="})
	assert.Error(t, err)

	err = (&Config{Root: ".", Where: "nonsense ="}).Check()
	assert.Error(t, err)
}

func TestConfigApply(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Apply(&Config{Root: "/tmp", FollowExt: []string{"png"}})
	assert.Equal(t, "/tmp", cfg.Root)
	assert.Equal(t, []string{"png"}, cfg.FollowExt)

	cfg.Apply(nil)
	assert.Equal(t, "/tmp", cfg.Root)
}
