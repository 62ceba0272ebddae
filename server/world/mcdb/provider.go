// Package mcdb persists chunk data to an on-disk LevelDB database, the way
// the teacher's own mcdb package backs dragonfly's default world storage.
// Each value is a gzip-compressed NBT compound, guarded by a palette-hash
// checksum and a semver-gated format-version key stored once per database.
package mcdb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ashenvale/voxel/server/block/cube"
	"github.com/ashenvale/voxel/server/world"
	"github.com/ashenvale/voxel/server/world/chunk"
	"github.com/ashenvale/voxel/server/world/mcdb/nbt"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/mod/semver"
)

// formatVersion is the on-disk layout's semantic version, checked against
// storedFormatVersionKey on Open the way a level.dat format field guards
// against a future server downgrading into a world it can't read. Bump the
// minor version for backwards-compatible additions (a new optional NBT key)
// and the major version for anything that changes how existing keys decode.
const formatVersion = "v1.0.0"

var storedFormatVersionKey = []byte("$format_version")

// Config holds the settings used to open a Provider.
type Config struct {
	// Log is used to report non-fatal decode issues (a corrupt chunk is
	// treated as not-found rather than failing the whole Open). Defaults to
	// slog.Default().
	Log *slog.Logger
}

// Provider implements world.Provider over a LevelDB database, one key per
// (dimension, chunk position) pair.
type Provider struct {
	log *slog.Logger
	db  *leveldb.DB
}

// Open opens (creating if necessary) the LevelDB database at dir and
// returns a Provider backed by it.
func (conf Config) Open(dir string) (*Provider, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("create world directory: %w", err)
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	if err := checkFormatVersion(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Provider{log: conf.Log, db: db}, nil
}

// checkFormatVersion stamps a freshly-created database with formatVersion,
// or, for an existing one, refuses to open a database whose stored version
// has a different major version or is newer than formatVersion. A stored
// version with the same major and an equal or older minor/patch component
// is accepted, since this provider always reads a superset of older minor
// versions' keys.
func checkFormatVersion(db *leveldb.DB) error {
	stored, err := db.Get(storedFormatVersionKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return db.Put(storedFormatVersionKey, []byte(formatVersion), nil)
	}
	if err != nil {
		return fmt.Errorf("read format version: %w", err)
	}
	if semver.Major(string(stored)) != semver.Major(formatVersion) {
		return fmt.Errorf("mcdb: world was written by format %s, incompatible with this server's %s", stored, formatVersion)
	}
	if semver.Compare(string(stored), formatVersion) > 0 {
		return fmt.Errorf("mcdb: world was written by a newer format %s than this server's %s", stored, formatVersion)
	}
	return nil
}

// LoadChunk implements world.Provider.
func (p *Provider) LoadChunk(pos world.ChunkPos, dim world.Dimension) (*chunk.Chunk, bool, error) {
	raw, err := p.db.Get(chunkKey(pos, dim), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read chunk %v: %w", pos, err)
	}
	data, err := gunzip(raw)
	if err != nil {
		p.log.Warn("discarding corrupt chunk", "pos", pos, "dimension", dim, "err", err)
		return nil, false, nil
	}
	c, err := decodeChunk(data, dim.Range())
	if err != nil {
		p.log.Warn("discarding corrupt chunk", "pos", pos, "dimension", dim, "err", err)
		return nil, false, nil
	}
	return c, true, nil
}

// SaveChunk implements world.Provider.
func (p *Provider) SaveChunk(pos world.ChunkPos, c *chunk.Chunk, dim world.Dimension) error {
	data, err := encodeChunk(c)
	if err != nil {
		return fmt.Errorf("encode chunk %v: %w", pos, err)
	}
	compressed, err := gzipBytes(data)
	if err != nil {
		return fmt.Errorf("compress chunk %v: %w", pos, err)
	}
	if err := p.db.Put(chunkKey(pos, dim), compressed, nil); err != nil {
		return fmt.Errorf("write chunk %v: %w", pos, err)
	}
	c.ClearDirty()
	return nil
}

// gzipBytes and gunzip wrap the encoded NBT payload the way the teacher's
// classic region format frames each chunk: a gzip-compressed blob, favouring
// ratio over speed since chunk writes are batched off the tick hot path.
func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Close implements world.Provider.
func (p *Provider) Close() error { return p.db.Close() }

func chunkKey(pos world.ChunkPos, dim world.Dimension) []byte {
	return []byte(fmt.Sprintf("%s@%d,%d", dim, pos.X(), pos.Z()))
}

// encodeChunk flattens c's primary layer into a single int32 array plus its
// scheduled tick queues, the minimal shape this server's curated block set
// needs persisted (no biomes, no waterlogging layer, no block entities yet).
func encodeChunk(c *chunk.Chunk) ([]byte, error) {
	r := c.Range()
	height := r.Height() + 1
	blocks := make([]int32, 0, height*16*16)
	// A palette's hash depends on the order its values were added, so the
	// checksum is taken over a chunk rebuilt in the same order decodeChunk
	// rebuilds it, not over c itself.
	canon := chunk.New(0, r)
	for y := r.Min(); y <= r.Max(); y++ {
		for x := uint8(0); x < 16; x++ {
			for z := uint8(0); z < 16; z++ {
				rid := c.Block(x, int16(y), z, 0)
				blocks = append(blocks, int32(rid))
				if rid != 0 {
					canon.SetBlock(x, int16(y), z, 0, rid)
				}
			}
		}
	}
	return nbt.Marshal(map[string]any{
		"blocks":       int32Array(blocks),
		"block_ticks":  encodeTicks(c.BlockTicks()),
		"fluid_ticks":  encodeTicks(c.FluidTicks()),
		"palette_hash": int64(canon.PaletteHash()),
	})
}

func int32Array(v []int32) []int32 { return v }

func encodeTicks(ticks []chunk.ScheduledTick) []map[string]any {
	out := make([]map[string]any, len(ticks))
	for i, t := range ticks {
		out[i] = map[string]any{
			"x":        int32(t.Pos[0]),
			"y":        int32(t.Pos[1]),
			"z":        int32(t.Pos[2]),
			"block":    int32(t.Block),
			"delay":    int16(t.Delay),
			"priority": int8(t.Priority),
		}
	}
	return out
}

func decodeChunk(data []byte, r cube.Range) (*chunk.Chunk, error) {
	m, err := nbt.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	blocks, ok := m["blocks"].([]int32)
	if !ok {
		return nil, fmt.Errorf("mcdb: missing blocks array")
	}
	height := r.Height() + 1
	if len(blocks) != height*16*16 {
		return nil, fmt.Errorf("mcdb: block array has %d entries, want %d", len(blocks), height*16*16)
	}

	c := chunk.New(0, r)
	i := 0
	for y := r.Min(); y <= r.Max(); y++ {
		for x := uint8(0); x < 16; x++ {
			for z := uint8(0); z < 16; z++ {
				rid := uint32(blocks[i])
				i++
				if rid == 0 {
					continue
				}
				c.SetBlock(x, int16(y), z, 0, rid)
			}
		}
	}
	c.SetBlockTicks(decodeTicks(m["block_ticks"]))
	c.SetFluidTicks(decodeTicks(m["fluid_ticks"]))

	if want, ok := m["palette_hash"].(int64); ok && uint64(want) != c.PaletteHash() {
		return nil, fmt.Errorf("mcdb: palette hash mismatch, chunk data is corrupt")
	}
	c.ClearDirty()
	return c, nil
}

func decodeTicks(v any) []chunk.ScheduledTick {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]chunk.ScheduledTick, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, chunk.ScheduledTick{
			Pos:      cube.Pos{int(m["x"].(int32)), int(m["y"].(int32)), int(m["z"].(int32))},
			Block:    uint32(m["block"].(int32)),
			Delay:    uint16(m["delay"].(int16)),
			Priority: m["priority"].(int8),
		})
	}
	return out
}
