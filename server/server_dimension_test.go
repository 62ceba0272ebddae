package server

import (
	"io"
	"testing"

	"github.com/ashenvale/voxel/server/world"
	"log/slog"
)

func TestServerDefaultDimensionFallback(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	conf := Config{
		Log:              log,
		DisableEnd:       true,
		DefaultDimension: world.Nether,
	}

	srv := conf.New()
	t.Cleanup(func() { _ = srv.Close() })

	if got := srv.World().Dimension(); got != world.Nether {
		t.Fatalf("expected default dimension nether, got %v", got)
	}
	if w, _ := srv.WorldOf(world.Nether); w != srv.World() {
		t.Fatalf("expected nether world to match default world")
	}
	if _, ok := srv.WorldOf(world.End); ok {
		t.Fatalf("expected end world to be absent when disabled")
	}

	// A disabled default dimension falls back to the overworld.
	fallbackConf := Config{
		Log:              log,
		DisableNether:    true,
		DefaultDimension: world.Nether,
	}
	fallback := fallbackConf.New()
	t.Cleanup(func() { _ = fallback.Close() })

	if got := fallback.World().Dimension(); got != world.Overworld {
		t.Fatalf("expected disabled nether default to fall back to overworld, got %v", got)
	}
	if _, ok := fallback.WorldOf(world.Nether); ok {
		t.Fatalf("expected nether world to be absent when disabled")
	}
}
