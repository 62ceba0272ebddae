// Package console provides a minimal stdin-driven command line for operating
// a running Server: querying and setting blocks, casting rays, and adjusting
// a Dimension's tick rate, without needing a client connection.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ashenvale/voxel/server"
	"github.com/ashenvale/voxel/server/block"
	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/text/cases"
)

// caseFold normalises console command and dimension tokens the same way
// regardless of the input locale, rather than assuming ASCII with
// strings.ToLower.
var caseFold = cases.Fold()

const maxHistoryEntries = 128

// Console reads commands line by line from an io.Reader (defaulting to
// os.Stdin) and executes them against a Server.
type Console struct {
	srv     *server.Server
	log     *slog.Logger
	reader  io.Reader
	history []string
}

// New returns a Console bound to srv. The console reads from os.Stdin and
// logs command output through log.
func New(srv *server.Server, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	return &Console{srv: srv, log: log, reader: os.Stdin}
}

// WithReader sets a custom reader for console input, enabling tests to drive
// the console without os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run consumes commands from the console's reader until ctx is cancelled or
// the reader reaches EOF.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.execute(line)
	}
}

func (c *Console) execute(line string) {
	c.history = append(c.history, line)
	if len(c.history) > maxHistoryEntries {
		c.history = c.history[len(c.history)-maxHistoryEntries:]
	}

	fields := strings.Fields(line)
	name := caseFold.String(fields[0])
	args := fields[1:]

	handler, ok := commands[name]
	if !ok {
		c.log.Error("unknown command", "command", name)
		return
	}

	w, ok := c.dimension(args)
	if !ok {
		c.log.Error("unknown dimension", "command", name)
		return
	}

	done := w.Exec(func(tx *world.Tx) {
		if err := handler(c, tx, args); err != nil {
			c.log.Error("command failed", "command", name, "err", err)
		}
	})
	<-done
}

// dimension resolves the World a command runs against: the server default,
// unless the last argument names another enabled Dimension.
func (c *Console) dimension(args []string) (*world.World, bool) {
	if len(args) == 0 {
		return c.srv.World(), true
	}
	switch caseFold.String(args[len(args)-1]) {
	case "overworld":
		return c.srv.WorldOf(world.Overworld)
	case "nether":
		return c.srv.WorldOf(world.Nether)
	case "end":
		return c.srv.WorldOf(world.End)
	default:
		return c.srv.World(), true
	}
}

type commandFunc func(c *Console, tx *world.Tx, args []string) error

var commands = map[string]commandFunc{
	"block":    cmdBlock,
	"setblock": cmdSetBlock,
	"break":    cmdBreak,
	"ray":      cmdRay,
	"tickrate": cmdTickRate,
	"chunks":   cmdChunks,
	"tick":     cmdTick,
}

func cmdBlock(c *Console, tx *world.Tx, args []string) error {
	pos, err := parsePos(args)
	if err != nil {
		return err
	}
	rid := tx.Block(pos)
	name := "unknown"
	if b, ok := tx.Registry().Lookup(rid); ok {
		name = fmt.Sprintf("%T", b)
	}
	c.log.Info("block", "pos", pos, "runtime-id", rid, "type", name)
	return nil
}

func cmdSetBlock(c *Console, tx *world.Tx, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: setblock <x> <y> <z> <name>")
	}
	pos, err := parsePos(args[:3])
	if err != nil {
		return err
	}
	rid, ok := tx.Registry().RuntimeID(qualifyBlockName(args[3]))
	if !ok {
		return fmt.Errorf("unknown block %q", args[3])
	}
	tx.SetBlockState(pos, rid, block.Flags(0))
	c.log.Info("block set", "pos", pos, "name", args[3])
	return nil
}

func cmdBreak(c *Console, tx *world.Tx, args []string) error {
	pos, err := parsePos(args)
	if err != nil {
		return err
	}
	drops := tx.BreakBlock(pos, block.Flags(0))
	c.log.Info("block broken", "pos", pos, "drops", len(drops))
	return nil
}

func cmdRay(c *Console, tx *world.Tx, args []string) error {
	if len(args) < 7 {
		return fmt.Errorf("usage: ray <ox> <oy> <oz> <dx> <dy> <dz> <distance>")
	}
	nums := make([]float64, 7)
	for i, a := range args[:7] {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", a, err)
		}
		nums[i] = v
	}
	origin := mgl64.Vec3{nums[0], nums[1], nums[2]}
	dir := mgl64.Vec3{nums[3], nums[4], nums[5]}
	pos, face, ok := tx.Raycast(origin, dir, nums[6])
	if !ok {
		c.log.Info("ray: no hit")
		return nil
	}
	c.log.Info("ray hit", "pos", pos, "face", face.String())
	return nil
}

func cmdTickRate(c *Console, tx *world.Tx, args []string) error {
	tr := tx.World().TickRate()
	if len(args) == 0 || isDimensionName(args[0]) {
		c.log.Info("tick rate", "interval", tr.Interval())
		return nil
	}
	ms, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", args[0], err)
	}
	tr.SetInterval(time.Duration(ms) * time.Millisecond)
	c.log.Info("tick rate set", "interval", tr.Interval())
	return nil
}

func cmdChunks(c *Console, tx *world.Tx, args []string) error {
	c.log.Info("loaded chunks", "count", tx.World().LoadedChunkCount())
	return nil
}

func cmdTick(c *Console, tx *world.Tx, args []string) error {
	c.log.Info("current tick", "tick", tx.World().CurrentTick(), "dimension", tx.World().Dimension())
	return nil
}

func isDimensionName(s string) bool {
	switch caseFold.String(s) {
	case "overworld", "nether", "end":
		return true
	}
	return false
}

func qualifyBlockName(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return "minecraft:" + name
}

func parsePos(args []string) (cube.Pos, error) {
	if len(args) < 3 {
		return cube.Pos{}, fmt.Errorf("expected x y z coordinates")
	}
	coords := make([]int, 3)
	for i, a := range args[:3] {
		v, err := strconv.Atoi(a)
		if err != nil {
			return cube.Pos{}, fmt.Errorf("invalid coordinate %q: %w", a, err)
		}
		coords[i] = v
	}
	return cube.Pos{coords[0], coords[1], coords[2]}, nil
}
