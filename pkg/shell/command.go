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

package shell

import (
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/gabebw/pngme/pkg/meta"
	"github.com/gabebw/pngme/pkg/ops"
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/gabebw/pngme/pkg/render"
	"os"
	"regexp"
	"strings"
)

type (
	command struct {
		name    string
		matcher *regexp.Regexp
		cmdFn   cmdFn
		help    string
	}

	cmdFn func(s *session, vars map[string]string) error
)

const (
	cmdLsName     = "ls"
	cmdDecodeName = "decode"
	cmdEncodeName = "encode"
	cmdRemoveName = "remove"
	cmdMetaName   = "meta"
	cmdVerifyName = "verify"
	cmdSaveName   = "save"
	cmdHelpName   = "help"
	cmdQuitName   = "quit"
)

var commands []command

func init() {
	commands = []command{
		{
			name:    cmdLsName,
			matcher: regexp.MustCompile("(?i)^(?:ls$|ls\\s+where\\s+(?P<ls>.+)$)"),
			cmdFn:   lsFn,
			help:    "list chunks, e.g. 'ls' or 'ls where critical = false'",
		},
		{
			name:    cmdDecodeName,
			matcher: regexp.MustCompile("(?i)^decode\\s+(?P<decode>\\S+)$"),
			cmdFn:   decodeFn,
			help:    "print the payload of a chunk as text, e.g. 'decode ruSt'",
		},
		{
			name:    cmdEncodeName,
			matcher: regexp.MustCompile("(?i)^encode\\s+(?P<encodeType>\\S+)\\s+(?P<encodeMsg>.+)$"),
			cmdFn:   encodeFn,
			help:    "embed a text payload, e.g. 'encode ruSt my secret'",
		},
		{
			name:    cmdRemoveName,
			matcher: regexp.MustCompile("(?i)^remove\\s+(?P<remove>\\S+)$"),
			cmdFn:   removeFn,
			help:    "remove the first chunk of the type, e.g. 'remove ruSt'",
		},
		{
			name:    cmdMetaName,
			matcher: regexp.MustCompile("(?i)^(?:meta$|meta\\s+(?P<meta>.+)$)"),
			cmdFn:   metaFn,
			help:    "list or edit tEXt metadata, e.g. 'meta', 'meta get title', 'meta set author=me', 'meta del author'",
		},
		{
			name:    cmdVerifyName,
			matcher: regexp.MustCompile("(?i)^verify$"),
			cmdFn:   verifyFn,
			help:    "check the chunk checksums of the current stream",
		},
		{
			name:    cmdSaveName,
			matcher: regexp.MustCompile("(?i)^(?:save$|save\\s+(?P<save>.+)$)"),
			cmdFn:   saveFn,
			help:    "write the stream back, e.g. 'save' or 'save copy.png'",
		},
		{
			name:    cmdHelpName,
			matcher: regexp.MustCompile("(?i)^help$"),
			cmdFn:   helpFn,
			help:    "show this message",
		},
		{
			name:    cmdQuitName,
			matcher: regexp.MustCompile("(?i)^(?:quit|exit)$"),
			cmdFn:   quitFn,
			help:    "exit the program",
		},
	}
}

func execCmd(input string, s *session) error {
	for _, d := range commands {
		if !d.matcher.MatchString(input) {
			continue
		}
		return d.cmdFn(s, getInputVars(d.matcher, input))
	}
	return fmt.Errorf("unknown command=%v", input)
}

func getInputVars(re *regexp.Regexp, input string) map[string]string {
	match := re.FindStringSubmatch(input)
	res := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if i != 0 && name != "" && i < len(match) {
			res[name] = match[i]
		}
	}
	return res
}

//===================== commands =====================

func lsFn(s *session, vars map[string]string) error {
	var flt pql.ChunkExpFunc
	if where := strings.TrimSpace(vars[cmdLsName]); where != "" {
		var err error
		flt, err = pql.BuildChunkExpFunc(where)
		if err != nil {
			return err
		}
	}

	rnd, err := render.NewRenderer(s.rcfg, os.Stdout)
	if err != nil {
		return err
	}

	infos := ops.List(s.png, flt)
	if err = rnd.Render(infos); err != nil {
		return err
	}
	fmt.Printf("\ntotal: %d\n\n", len(infos))
	return nil
}

func decodeFn(s *session, vars map[string]string) error {
	msg, err := ops.Decode(s.png, vars[cmdDecodeName])
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func encodeFn(s *session, vars map[string]string) error {
	ctype, msg := vars["encodeType"], vars["encodeMsg"]
	if err := ops.Encode(s.png, ctype, []byte(msg), s.force); err != nil {
		return err
	}
	s.dirty = true
	fmt.Printf("embedded %d byte(s) as %s\n", len(msg), ctype)
	return nil
}

func removeFn(s *session, vars map[string]string) error {
	c, err := ops.Remove(s.png, vars[cmdRemoveName])
	if err != nil {
		return err
	}
	s.dirty = true
	fmt.Printf("removed chunk type=%s, length=%d\n", c.Type(), c.Length())
	return nil
}

func metaFn(s *session, vars map[string]string) error {
	args := strings.TrimSpace(vars[cmdMetaName])
	switch {
	case args == "":
		ee, err := meta.List(s.png)
		if err != nil {
			return err
		}
		for _, e := range ee {
			fmt.Printf("%s=%s\n", e.Key, e.Value)
		}
		fmt.Printf("\ntotal: %d\n\n", len(ee))
	case strings.HasPrefix(args, "get "):
		v, err := meta.Get(s.png, strings.TrimSpace(args[4:]))
		if err != nil {
			return err
		}
		fmt.Println(v)
	case strings.HasPrefix(args, "set "):
		ee, err := meta.ParseArgs(args[4:])
		if err != nil {
			return err
		}
		if len(ee) == 0 {
			return fmt.Errorf("nothing to set, expecting key=value pairs")
		}
		if err = meta.Set(s.png, ee); err != nil {
			return err
		}
		s.dirty = true
		fmt.Printf("set %d pair(s)\n", len(ee))
	case strings.HasPrefix(args, "del "):
		key := strings.TrimSpace(args[4:])
		if err := meta.Delete(s.png, key); err != nil {
			return err
		}
		s.dirty = true
		fmt.Printf("deleted keyword=%s\n", key)
	default:
		return fmt.Errorf("unknown meta command=%v, expecting get, set or del", args)
	}
	return nil
}

func verifyFn(s *session, _ map[string]string) error {
	rep, err := ops.Verify(s.png.Bytes())
	if err != nil {
		return err
	}

	for _, cc := range rep.Chunks {
		status := "ok"
		if !cc.CrcOk || !cc.TypeOk {
			status = "corrupted"
		}
		fmt.Printf("%6d: %-4s crc=0x%08x %s\n", cc.Offset, cc.Type, cc.StoredCrc, status)
	}
	if !rep.Trailer {
		fmt.Println("warning: the stream does not end with IEND")
	}
	fmt.Printf("\ntotal: %d, corrupted: %d\n\n", rep.Total, rep.Corrupted)
	return nil
}

func saveFn(s *session, vars map[string]string) error {
	file := strings.TrimSpace(vars[cmdSaveName])
	if file == "" {
		file = s.file
	}

	data := s.png.Bytes()
	if err := s.strg.WriteData(file, data); err != nil {
		return err
	}
	s.dirty = false
	fmt.Printf("saved %s to %s\n", humanize.Bytes(uint64(len(data))), file)
	return nil
}

func helpFn(_ *session, _ map[string]string) error {
	fmt.Printf("\n\t%-10s\n", "[HELP]")
	for _, d := range commands {
		fmt.Printf("\n\t%-15s %s", d.name, d.help)
	}
	fmt.Print("\n\n")
	return nil
}

func quitFn(s *session, _ map[string]string) error {
	s.beforeQuit()
	os.Exit(0)
	return nil
}
