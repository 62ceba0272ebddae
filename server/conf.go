package server

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ashenvale/voxel/server/world"
	"github.com/ashenvale/voxel/server/world/generator"
	"github.com/ashenvale/voxel/server/world/mcdb"
	"github.com/pelletier/go-toml"
)

// Config contains the options needed to start a Server.
type Config struct {
	// Log is the Logger used for server-wide logging. Defaults to
	// slog.Default().
	Log *slog.Logger
	// WorldProvider persists and loads chunk data for every enabled
	// Dimension. Defaults to world.NopProvider{}.
	WorldProvider world.Provider
	// Generator returns the world.Generator to use for a given Dimension. If
	// nil, every Dimension uses a generator.Overworld seeded with Seed.
	Generator func(dim world.Dimension) world.Generator
	// Seed seeds the default Generator when one is not supplied.
	Seed int64
	// RandomTickSpeed is the number of random block ticks attempted per sub
	// chunk, per tick, in every enabled World. Defaults to 3.
	RandomTickSpeed int
	// MaxConcurrentGenerations bounds how many chunks may generate at once,
	// per World. Defaults to 4.
	MaxConcurrentGenerations int
	// DisableNether and DisableEnd skip creating those dimensions entirely.
	// The overworld is always created.
	DisableNether bool
	DisableEnd    bool
	// DefaultDimension is the Dimension Server.World returns. Defaults to
	// world.Overworld.
	DefaultDimension world.Dimension
}

// New creates a Server from conf, creating a World for every enabled
// Dimension.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.WorldProvider == nil {
		conf.WorldProvider = world.NopProvider{}
	}
	if conf.Generator == nil {
		overworld := generator.NewOverworld(conf.Seed)
		conf.Generator = func(world.Dimension) world.Generator { return overworld }
	}
	if conf.DefaultDimension == nil {
		conf.DefaultDimension = world.Overworld
	}

	srv := &Server{
		conf:   conf,
		log:    conf.Log,
		worlds: make(map[world.Dimension]*world.World),
		def:    conf.DefaultDimension,
	}

	dims := []world.Dimension{world.Overworld}
	if !conf.DisableNether {
		dims = append(dims, world.Nether)
	}
	if !conf.DisableEnd {
		dims = append(dims, world.End)
	}
	for _, dim := range dims {
		srv.worlds[dim] = world.Config{
			Dim:                      dim,
			Provider:                 conf.WorldProvider,
			Generator:                conf.Generator(dim),
			RandomTickSpeed:          conf.RandomTickSpeed,
			MaxConcurrentGenerations: conf.MaxConcurrentGenerations,
		}.New()
	}
	if _, ok := srv.worlds[srv.def]; !ok {
		conf.Log.Warn("default dimension disabled, falling back to overworld", "dimension", fmt.Sprint(srv.def))
		srv.def = world.Overworld
	}
	return srv
}

// UserConfig is the on-disk configuration of a Server, read from and
// written to a TOML file. DefaultConfig returns one filled with sane
// defaults; UserConfig.Config converts it to a Config ready for New.
type UserConfig struct {
	Server struct {
		Name string `toml:"name"`
	} `toml:"server"`
	World struct {
		Folder           string `toml:"folder"`
		SaveData         bool   `toml:"save-data"`
		Seed             int64  `toml:"seed"`
		RandomTickSpeed  int    `toml:"random-tick-speed"`
		DisableNether    bool   `toml:"disable-nether"`
		DisableEnd       bool   `toml:"disable-end"`
		DefaultDimension string `toml:"default-dimension"`
	} `toml:"world"`
}

// DefaultConfig returns a UserConfig filled with default values.
func DefaultConfig() UserConfig {
	var c UserConfig
	c.Server.Name = "Voxel Server"
	c.World.Folder = "world"
	c.World.SaveData = true
	c.World.RandomTickSpeed = 3
	c.World.DefaultDimension = "overworld"
	return c
}

// LoadConfig reads a UserConfig from path, creating it with default values
// first if it does not yet exist.
func LoadConfig(path string, log *slog.Logger) (UserConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := DefaultConfig()
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("marshal default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("write default config: %w", err)
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return UserConfig{}, fmt.Errorf("read config: %w", err)
	}
	c := DefaultConfig()
	if err := toml.Unmarshal(data, &c); err != nil {
		return UserConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Config converts uc to a Config, ready for Config.New. log is attached to
// the resulting Config's Log field.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:              log,
		Seed:             uc.World.Seed,
		RandomTickSpeed:  uc.World.RandomTickSpeed,
		DisableNether:    uc.World.DisableNether,
		DisableEnd:       uc.World.DisableEnd,
		DefaultDimension: parseDimension(uc.World.DefaultDimension),
	}
	if uc.World.SaveData {
		provider, err := mcdb.Config{Log: log}.Open(uc.World.Folder)
		if err != nil {
			return conf, fmt.Errorf("open world provider: %w", err)
		}
		conf.WorldProvider = provider
	}
	return conf, nil
}

func parseDimension(name string) world.Dimension {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nether", "hell":
		return world.Nether
	case "end", "the_end":
		return world.End
	default:
		return world.Overworld
	}
}
