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

// Package shell runs an interactive session over one png stream. The
// stream is loaded into memory once, edits stay there until an explicit
// save command writes them back through the storage.
package shell

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/render"
	"github.com/gabebw/pngme/pkg/storage"
	"github.com/peterh/liner"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

type (
	session struct {
		file  string
		png   *png.Png
		strg  storage.Storage
		rcfg  *render.Config
		force bool
		dirty bool
		hfile string

		beforeQuit func()
	}
)

const (
	shellHistoryFileName = ".pngme_history"
)

// Run opens the file through the storage provided and starts an
// interactive session over its chunks. An empty hfile selects the default
// history file location.
func Run(file string, strg storage.Storage, rcfg *render.Config, force bool, hfile string) error {
	data, err := strg.ReadData(file)
	if err != nil {
		return err
	}

	p, err := png.Parse(data)
	if err != nil {
		return err
	}

	printLogo()
	fmt.Printf("%s: %d chunk(s), %s\n\n", file, len(p.Chunks()), humanize.Bytes(uint64(len(data))))

	if hfile == "" {
		hfile = historyFilePath()
	}
	newSession(file, p, strg, rcfg, force, hfile).run()
	return nil
}

func historyFilePath() string {
	var fileDir = os.TempDir()
	usr, err := user.Current()
	if err == nil {
		fileDir = usr.HomeDir
	}
	return filepath.Join(fileDir, shellHistoryFileName)
}

func printLogo() {
	fmt.Print("" +
		" _ __  _ __   __ _ _ __ ___   ___\n" +
		"| '_ \\| '_ \\ / _` | '_ ` _ \\ / _ \\\n" +
		"| |_) | | | | (_| | | | | | |  __/\n" +
		"| .__/|_| |_|\\__, |_| |_| |_|\\___|\n" +
		"|_|          |___/\n\n")
}

func printError(err error) {
	_, _ = fmt.Fprintln(os.Stderr, err)
}

//===================== session =====================

func newSession(file string, p *png.Png, strg storage.Storage, rcfg *render.Config,
	force bool, hfile string) *session {

	s := new(session)
	s.file = file
	s.png = p
	s.strg = strg
	s.rcfg = rcfg
	s.force = force
	s.hfile = hfile
	return s
}

func (s *session) run() {
	lnr := liner.NewLiner()
	lnr.SetCtrlCAborts(true)

	s.loadHistory(lnr)
	s.beforeQuit = func() {
		if s.dirty {
			fmt.Println("warning: unsaved changes are lost")
		}
		s.saveHistory(lnr)
		_ = lnr.Close()
		fmt.Println("bye!")
	}

	defer s.beforeQuit()

	for {
		inp, err := lnr.Prompt("pngme>")
		if err != nil {
			printError(err)
			if err == io.EOF || err == liner.ErrPromptAborted {
				break
			}
		}

		inp = strings.TrimSpace(inp)
		if inp == "" {
			continue
		}

		lnr.AppendHistory(inp)
		if err = execCmd(inp, s); err != nil {
			printError(err)
		}
	}
}

func (s *session) loadHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_RDONLY|os.O_CREATE, 0640)
	if err != nil {
		printError(err)
		return
	}
	_, err = lnr.ReadHistory(f)
	if err != nil {
		printError(err)
		return
	}
	_ = f.Close()
}

func (s *session) saveHistory(lnr *liner.State) {
	f, err := os.OpenFile(s.hfile, os.O_WRONLY|os.O_CREATE, 0640)
	if err != nil {
		printError(err)
		return
	}
	_, err = lnr.WriteHistory(f)
	if err != nil {
		printError(err)
		return
	}
	_ = f.Close()
}
