// Package server ties together one or more world.World instances — one per
// enabled Dimension — under a single Config, the way the teacher's Server
// ties together worlds, listeners and players. Networking, listeners and
// player sessions are out of scope for this headless simulation server; see
// DESIGN.md for the dropped teacher subsystems this implies.
package server

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/ashenvale/voxel/server/world"
)

// Server owns every Dimension's World for the lifetime of the process.
type Server struct {
	conf Config
	log  *slog.Logger

	mu     sync.RWMutex
	worlds map[world.Dimension]*world.World
	def    world.Dimension

	closeOnce sync.Once
}

// World returns the World for the server's default Dimension.
func (srv *Server) World() *world.World {
	w, _ := srv.WorldOf(srv.def)
	return w
}

// WorldOf returns the World for dim, if that Dimension is enabled.
func (srv *Server) WorldOf(dim world.Dimension) (*world.World, bool) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	w, ok := srv.worlds[dim]
	return w, ok
}

// Worlds returns every enabled World, keyed by Dimension.
func (srv *Server) Worlds() map[world.Dimension]*world.World {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	out := make(map[world.Dimension]*world.World, len(srv.worlds))
	for dim, w := range srv.worlds {
		out[dim] = w
	}
	return out
}

// Log returns the Logger the Server was configured with.
func (srv *Server) Log() *slog.Logger { return srv.log }

// Close shuts down every World the Server manages. It is safe to call more
// than once; only the first call does anything.
func (srv *Server) Close() error {
	var err error
	srv.closeOnce.Do(func() {
		srv.mu.RLock()
		worlds := make([]*world.World, 0, len(srv.worlds))
		for _, w := range srv.worlds {
			worlds = append(worlds, w)
		}
		srv.mu.RUnlock()

		var errs []error
		for _, w := range worlds {
			if e := w.Close(); e != nil {
				errs = append(errs, e)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
