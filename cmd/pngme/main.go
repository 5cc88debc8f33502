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

package main

import (
	"context"
	"fmt"
	"github.com/gabebw/pngme"
	"github.com/gabebw/pngme/pkg/meta"
	"github.com/gabebw/pngme/pkg/ops"
	"github.com/gabebw/pngme/pkg/png"
	"github.com/gabebw/pngme/pkg/pql"
	"github.com/gabebw/pngme/pkg/render"
	"github.com/gabebw/pngme/pkg/scan"
	"github.com/gabebw/pngme/pkg/shell"
	"github.com/gabebw/pngme/pkg/storage"
	"github.com/gabebw/pngme/pkg/utils"
	"github.com/jrivets/log4g"
	"github.com/pkg/errors"
	ucli "gopkg.in/urfave/cli.v2"
	"os"
	"sort"
	"strings"
)

const (
	argCfgFile    = "config-file"
	argLogCfgFile = "log-config-file"

	argEncForce = "force"

	argLstWhere   = "where"
	argLstOutput  = "output"
	argLstOffsets = "offsets"

	argScanExt = "ext"

	argVrfFix = "fix"

	argMetaOutPath = "output-path"
)

var (
	logger = log4g.GetLogger("pngme")

	// errUsage marks command line misuse, it maps to its own exit code
	errUsage = fmt.Errorf("usage error")
)

// main function is an entry point for the 'pngme' command, which groups
// the png chunk manipulation functionality in one executable:
// 		encode	- embeds a message into a png file as a new chunk
//		decode	- extracts a message embedded before
// 		remove	- removes an embedded chunk
// 		print	- lists the chunks of one png file
// 		scan	- finds png streams under a directory and lists their chunks
// 		verify	- checks chunk checksums, optionally repairing them
// 		meta	- reads and writes tEXt key-value metadata
// 		shell	- is an interactive CLI over one png file
func main() {
	cmnFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argCfgFile,
			Usage: "configuration file path",
		},
		&ucli.StringFlag{
			Name:  argLogCfgFile,
			Usage: "log4g configuration file path",
		},
	}

	listFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argLstWhere,
			Usage: "chunk filter expression e.g. \"critical = false AND len > 0\"",
		},
		&ucli.StringFlag{
			Name:  argLstOutput,
			Usage: "listing format, one of: \"plain\" or \"json\"",
		},
		&ucli.BoolFlag{
			Name:  argLstOffsets,
			Usage: "include chunk byte offsets into the plain listing",
		},
	}
	listFlags = append(listFlags, cmnFlags...)

	encodeFlags := []ucli.Flag{
		&ucli.BoolFlag{
			Name:  argEncForce,
			Usage: "embed even if the reserved bit of the chunk type is not valid",
		},
	}
	encodeFlags = append(encodeFlags, cmnFlags...)

	scanFlags := []ucli.Flag{
		&ucli.StringSliceFlag{
			Name:  argScanExt,
			Usage: "file extensions to consider e.g. \"png\",\"img\" (all files are sniffed by default)",
		},
	}
	scanFlags = append(scanFlags, listFlags...)

	verifyFlags := []ucli.Flag{
		&ucli.BoolFlag{
			Name:  argVrfFix,
			Usage: "rewrite broken checksums with the recomputed values",
		},
	}
	verifyFlags = append(verifyFlags, cmnFlags...)

	metaFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argMetaOutPath,
			Usage: "where to write the modified stream (the input file by default)",
		},
	}
	metaFlags = append(metaFlags, cmnFlags...)

	app := &ucli.App{
		Name:    "pngme",
		Version: pngme.Version,
		Usage:   "Png chunk manipulation tool",
		Commands: []*ucli.Command{
			{
				Name:      "encode",
				Usage:     "Embed a message into a png file",
				UsageText: "pngme encode [command options] <path> <chunk-type> <message> [output-path]",
				Action:    runEncode,
				Flags:     encodeFlags,
			},
			{
				Name:      "decode",
				Usage:     "Print a message embedded before",
				UsageText: "pngme decode [command options] <path> <chunk-type>",
				Action:    runDecode,
				Flags:     cmnFlags,
			},
			{
				Name:      "remove",
				Usage:     "Remove the first chunk of the given type",
				UsageText: "pngme remove [command options] <path> <chunk-type> [output-path]",
				Action:    runRemove,
				Flags:     cmnFlags,
			},
			{
				Name:      "print",
				Usage:     "List the chunks of a png file",
				UsageText: "pngme print [command options] <path>",
				Action:    runPrint,
				Flags:     listFlags,
			},
			{
				Name:      "scan",
				Usage:     "Find png streams under a directory and list their chunks",
				UsageText: "pngme scan [command options] <root>",
				Action:    runScan,
				Flags:     scanFlags,
			},
			{
				Name:      "verify",
				Usage:     "Check the chunk checksums of a png file",
				UsageText: "pngme verify [command options] <path> [output-path]",
				Action:    runVerify,
				Flags:     verifyFlags,
			},
			{
				Name:      "meta",
				Usage:     "Read or write tEXt key-value metadata",
				UsageText: "pngme meta [command options] <path> [get <key> | set k=v ... | del <key>]",
				Action:    runMeta,
				Flags:     metaFlags,
			},
			{
				Name:      "shell",
				Usage:     "Run an interactive session over one png file",
				UsageText: "pngme shell [command options] <path>",
				Action:    runShell,
				Flags:     cmnFlags,
			},
		},
	}

	sort.Sort(ucli.FlagsByName(app.Flags))
	for _, c := range app.Commands {
		sort.Sort(ucli.FlagsByName(c.Flags))
	}

	err := app.Run(os.Args)
	log4g.Shutdown()
	if err != nil {
		fmt.Println(err)
		os.Exit(toExitCode(err))
	}
}

// toExitCode maps every error kind to its own exit status, so scripts can
// tell the failure modes apart without parsing the output
func toExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, png.ErrInvalidChunkType):
		return 2
	case errors.Is(err, png.ErrCrcMismatch):
		return 3
	case errors.Is(err, png.ErrUnexpectedEof):
		return 4
	case errors.Is(err, png.ErrInvalidSignature):
		return 5
	case errors.Is(err, png.ErrMissingTrailer):
		return 6
	case errors.Is(err, png.ErrChunkNotFound):
		return 7
	case errors.Is(err, png.ErrProtectedChunk):
		return 8
	case errors.Is(err, png.ErrEncoding):
		return 9
	case errors.Is(err, errUsage):
		return 10
	}
	return 1
}

func initCfg(c *ucli.Context) (*pngme.Config, error) {
	var (
		err error
		cfg = pngme.NewDefaultConfig()
	)

	logCfgFile := c.String(argLogCfgFile)
	if logCfgFile != "" {
		err = log4g.ConfigF(logCfgFile)
		if err != nil {
			return nil, err
		}
	}

	cfgFile := c.String(argCfgFile)
	if cfgFile != "" {
		logger.Info("Loading config from=", cfgFile)
		config, err := pngme.LoadCfgFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg.Apply(config)
	}

	applyArgsToCfg(c, cfg)
	return cfg, nil
}

func applyArgsToCfg(c *ucli.Context, cfg *pngme.Config) {
	if c.Bool(argEncForce) {
		cfg.ForceReserved = true
	}
	if out := c.String(argLstOutput); out != "" {
		cfg.Render.Type = out
	}
	if c.Bool(argLstOffsets) {
		cfg.Render.Params[render.PrmPlainShowOffset] = true
	}
	if where := c.String(argLstWhere); where != "" {
		cfg.Scan.Where = where
	}
	if exts := c.StringSlice(argScanExt); len(exts) > 0 {
		cfg.Scan.FollowExt = exts
	}
}

func newCtx() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	utils.NewNotifierOnIntTermSignal(func(s os.Signal) {
		logger.Warn("Handling signal=", s)
		cancel()
	})
	return ctx
}

func readPng(strg storage.Storage, path string) (*png.Png, error) {
	data, err := strg.ReadData(path)
	if err != nil {
		return nil, err
	}
	return png.Parse(data)
}

func runEncode(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	if len(args) < 3 || len(args) > 4 {
		return errors.Wrapf(errUsage,
			"expecting <path> <chunk-type> <message> [output-path], but args=%v", args)
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	p, err := readPng(strg, args[0])
	if err != nil {
		return err
	}

	if err = ops.Encode(p, args[1], []byte(args[2]), cfg.ForceReserved); err != nil {
		return err
	}

	out := args[0]
	if len(args) == 4 {
		out = args[3]
	}
	return strg.WriteData(out, p.Bytes())
}

func runDecode(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	if len(args) != 2 {
		return errors.Wrapf(errUsage, "expecting <path> <chunk-type>, but args=%v", args)
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	p, err := readPng(strg, args[0])
	if err != nil {
		return err
	}

	msg, err := ops.Decode(p, args[1])
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}

func runRemove(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	if len(args) < 2 || len(args) > 3 {
		return errors.Wrapf(errUsage,
			"expecting <path> <chunk-type> [output-path], but args=%v", args)
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	p, err := readPng(strg, args[0])
	if err != nil {
		return err
	}

	rc, err := ops.Remove(p, args[1])
	if err != nil {
		return err
	}

	out := args[0]
	if len(args) == 3 {
		out = args[2]
	}
	if err = strg.WriteData(out, p.Bytes()); err != nil {
		return err
	}

	fmt.Printf("removed chunk type=%s, length=%d\n", rc.Type(), rc.Length())
	return nil
}

func runPrint(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return errors.Wrapf(errUsage,
			"expecting exactly one png file path, but args=%v", c.Args().Slice())
	}

	var flt pql.ChunkExpFunc
	if where := c.String(argLstWhere); where != "" {
		if flt, err = pql.BuildChunkExpFunc(where); err != nil {
			return err
		}
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	p, err := readPng(strg, c.Args().First())
	if err != nil {
		return err
	}

	rnd, err := render.NewRenderer(cfg.Render, os.Stdout)
	if err != nil {
		return err
	}

	infos := ops.List(p, flt)
	if err = rnd.Render(infos); err != nil {
		return err
	}

	fmt.Printf("\ntotal: %d\n", len(infos))
	return nil
}

func runScan(c *ucli.Context) error {
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return errors.Wrapf(errUsage,
			"expecting exactly one root directory, but args=%v", c.Args().Slice())
	}
	cfg.Scan.Root = c.Args().First()

	s, err := scan.NewScanner(cfg.Scan)
	if err != nil {
		return err
	}

	rnd, err := render.NewRenderer(cfg.Render, os.Stdout)
	if err != nil {
		return err
	}

	_, err = s.Run(newCtx(), rnd, os.Stdout)
	return err
}

func runVerify(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	if len(args) < 1 || len(args) > 2 {
		return errors.Wrapf(errUsage, "expecting <path> [output-path], but args=%v", args)
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	data, err := strg.ReadData(args[0])
	if err != nil {
		return err
	}

	rep, err := ops.Verify(data)
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
	fmt.Printf("\ntotal: %d, corrupted: %d\n", rep.Total, rep.Corrupted)

	if !c.Bool(argVrfFix) {
		if rep.Corrupted > 0 {
			return errors.Wrapf(png.ErrCrcMismatch, "%d corrupted chunk(s) found", rep.Corrupted)
		}
		return nil
	}

	out, fixed, err := ops.Fix(data)
	if err != nil {
		return err
	}

	dst := args[0]
	if len(args) == 2 {
		dst = args[1]
	}
	if err = strg.WriteData(dst, out); err != nil {
		return err
	}

	fmt.Printf("repaired %d chunk(s), written to %s\n", fixed, dst)
	return nil
}

func runMeta(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	args := c.Args().Slice()
	if len(args) < 1 {
		return errors.Wrapf(errUsage,
			"expecting <path> [get <key> | set k=v ... | del <key>], but args=%v", args)
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	path := args[0]
	p, err := readPng(strg, path)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		ee, err := meta.List(p)
		if err != nil {
			return err
		}
		for _, e := range ee {
			fmt.Printf("%s=%s\n", e.Key, e.Value)
		}
		fmt.Printf("\ntotal: %d\n", len(ee))
		return nil
	}

	out := c.String(argMetaOutPath)
	if out == "" {
		out = path
	}

	switch args[1] {
	case "get":
		if len(args) != 3 {
			return errors.Wrapf(errUsage, "expecting get <key>, but args=%v", args[1:])
		}
		v, err := meta.Get(p, args[2])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	case "set":
		if len(args) < 3 {
			return errors.Wrapf(errUsage, "expecting set k1=v1 k2=v2 ..., but args=%v", args[1:])
		}
		ee, err := meta.ParseArgs(strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		if len(ee) == 0 {
			return errors.Wrapf(errUsage, "nothing to set in args=%v", args[2:])
		}
		if err = meta.Set(p, ee); err != nil {
			return err
		}
		if err = strg.WriteData(out, p.Bytes()); err != nil {
			return err
		}
		fmt.Printf("set %d pair(s)\n", len(ee))
		return nil
	case "del":
		if len(args) != 3 {
			return errors.Wrapf(errUsage, "expecting del <key>, but args=%v", args[1:])
		}
		if err = meta.Delete(p, args[2]); err != nil {
			return err
		}
		if err = strg.WriteData(out, p.Bytes()); err != nil {
			return err
		}
		fmt.Printf("deleted keyword=%s\n", args[2])
		return nil
	}
	return errors.Wrapf(errUsage, "unknown meta command=%v", args[1])
}

func runShell(c *ucli.Context) error {
	quietConsole(c)
	cfg, err := initCfg(c)
	if err != nil {
		return err
	}

	if c.Args().Len() != 1 {
		return errors.Wrapf(errUsage,
			"expecting exactly one png file path, but args=%v", c.Args().Slice())
	}

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	return shell.Run(c.Args().First(), strg, cfg.Render, cfg.ForceReserved, cfg.HistoryFile)
}

// quietConsole keeps the console output of the result printing commands
// clean unless an explicit log4g config is provided
func quietConsole(c *ucli.Context) {
	if c.String(argLogCfgFile) == "" {
		log4g.SetLogLevel("", log4g.FATAL)
	}
}
