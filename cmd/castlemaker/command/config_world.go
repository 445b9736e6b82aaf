package command

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/castlemaker/internal/game"
	"github.com/pixil98/castlemaker/internal/session"
	"github.com/pixil98/castlemaker/internal/storage"
	"github.com/pixil98/go-errors"
)

// seedMapId names the layout written into an empty maps directory.
const seedMapId = "main"

type SpawnPoint struct {
	MapID game.MapID `json:"map_id"`
	X     uint16     `json:"x"`
	Y     uint16     `json:"y"`
}

func (s SpawnPoint) loc() game.MapLoc {
	return game.Loc(s.MapID, s.X, s.Y)
}

type WorldConfig struct {
	Width       uint16       `json:"width"`
	Height      uint16       `json:"height"`
	MapsPath    string       `json:"maps_path"`
	SpawnPoints []SpawnPoint `json:"spawn_points"`
	IdleTimeout string       `json:"idle_timeout"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	w, h := c.size()
	if w < 3 || h < 3 {
		el.Add(fmt.Errorf("map must be at least 3x3, got %dx%d", w, h))
	}

	world, err := c.buildWorld(false)
	if err != nil {
		el.Add(err)
		return el.Err()
	}
	// The default spawn is checked too when none are configured.
	for i, loc := range c.spawnLocs() {
		m, ok := world.Map(loc.MapID)
		if !ok {
			el.Add(fmt.Errorf("spawn point %d: map %d does not exist", i, loc.MapID))
			continue
		}
		t, ok := m.Tile(loc.Pos)
		if !ok {
			el.Add(fmt.Errorf("spawn point %d: %s is outside the map", i, loc.Pos))
		} else if t.Kind != game.TileGround {
			el.Add(fmt.Errorf("spawn point %d: %s is not ground", i, loc.Pos))
		}
	}

	if c.IdleTimeout != "" {
		d, err := time.ParseDuration(c.IdleTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing idle_timeout: %w", err))
		} else if d < 0 {
			el.Add(fmt.Errorf("idle_timeout must not be negative"))
		}
	}

	return el.Err()
}

func (c *WorldConfig) size() (uint16, uint16) {
	w, h := c.Width, c.Height
	if w == 0 {
		w = game.DefaultWidth
	}
	if h == 0 {
		h = game.DefaultHeight
	}
	return w, h
}

// buildWorld creates the generated map, or loads one map per layout asset
// under MapsPath. Map ids follow the asset ids in sorted order. With seed set
// an empty maps directory first receives the generated map.
func (c *WorldConfig) buildWorld(seed bool) (game.World, error) {
	if c.MapsPath == "" {
		return game.NewWorld(c.size()), nil
	}

	store, err := storage.NewFileStore[*game.Layout](c.MapsPath)
	if err != nil {
		return game.World{}, fmt.Errorf("loading maps: %w", err)
	}

	ids := store.Ids()
	if len(ids) == 0 {
		if !seed {
			return game.NewWorld(c.size()), nil
		}
		if err := store.Save(seedMapId, game.LayoutOf(game.NewMap(c.size()))); err != nil {
			return game.World{}, fmt.Errorf("seeding maps: %w", err)
		}
		slog.Info("seeded maps directory", "path", c.MapsPath, "id", seedMapId)
		ids = store.Ids()
	}

	var w game.World
	for _, id := range ids {
		l, _ := store.Get(id)
		m, err := l.Build()
		if err != nil {
			return game.World{}, fmt.Errorf("building map %s: %w", id, err)
		}
		mapId := w.Maps.Push(m)
		slog.Debug("loaded map", "asset", id, "map_id", mapId, "width", m.Width, "height", m.Height)
	}

	if err := w.CheckLinks(); err != nil {
		return game.World{}, err
	}
	return w, nil
}

func (c *WorldConfig) spawnLocs() []game.MapLoc {
	if len(c.SpawnPoints) == 0 {
		return []game.MapLoc{session.DefaultSpawn}
	}
	locs := make([]game.MapLoc, len(c.SpawnPoints))
	for i, sp := range c.SpawnPoints {
		locs[i] = sp.loc()
	}
	return locs
}

func (c *WorldConfig) idleTimeout() time.Duration {
	d, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return 0
	}
	return d
}
