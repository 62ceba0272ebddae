package world

import (
	"math/rand/v2"

	"github.com/ashenvale/voxel/server/block"
	"golang.org/x/sync/semaphore"
)

// Config holds the settings used to create a World.
type Config struct {
	// Dim is the Dimension the World represents. Defaults to Overworld.
	Dim Dimension
	// Provider persists and loads chunk data. Defaults to NopProvider.
	Provider Provider
	// Generator produces terrain for chunks the Provider does not have.
	// Defaults to NopGenerator.
	Generator Generator
	// Registry resolves block runtime IDs to their behaviour. Defaults to
	// block.DefaultRegistry().
	Registry *block.Registry
	// RandomTickSpeed is the number of random block ticks attempted per
	// sub chunk, per tick. Defaults to 3, matching vanilla.
	RandomTickSpeed int
	// MaxConcurrentGenerations bounds how many chunks may be generated at
	// once, guarding the CPU-bound generator against an unbounded fan-out
	// of loader requests. Defaults to 4.
	MaxConcurrentGenerations int
}

// New creates a new World using the settings in conf, starting its
// transaction-processing and tick loops.
func (conf Config) New() *World {
	if conf.Dim == nil {
		conf.Dim = Overworld
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.Generator == nil {
		conf.Generator = NopGenerator{}
	}
	if conf.Registry == nil {
		conf.Registry = block.DefaultRegistry()
	}
	if conf.RandomTickSpeed == 0 {
		conf.RandomTickSpeed = 3
	}
	if conf.MaxConcurrentGenerations <= 0 {
		conf.MaxConcurrentGenerations = 4
	}

	w := &World{
		conf:     conf,
		ra:       conf.Dim.Range(),
		registry: conf.Registry,
		chunks:   make(map[ChunkPos]*chunkEntry),
		pending:  make(map[ChunkPos]*pendingGeneration),
		gate:     semaphore.NewWeighted(int64(conf.MaxConcurrentGenerations)),
		queue:    make(chan func(*Tx), 64),
		closing:  make(chan struct{}),
		viewers:  make(map[*Loader]Viewer),
		tickRate: newTickRate(),
		r:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	w.wg.Add(2)
	go w.handleTransactions()
	go w.tickLoop()
	return w
}
