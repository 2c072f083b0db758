// Package pipeline loads a level into world and prop primitives sharing one
// material list.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/batch"
	"bsp-map-loader/internal/bsp"
	"bsp-map-loader/internal/failsoft"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/prop"
	"bsp-map-loader/internal/world"
)

// Options tunes a load. The zero value logs to slog.Default and uses one
// worker per CPU.
type Options struct {
	Logger  *slog.Logger
	Workers int
	// Progress reports material resolution.
	Progress batch.ProgressFunc
}

// Result is a loaded level. Primitive material indices point into
// Materials; Keys[i] is the key Materials[i] was resolved from.
type Result struct {
	World     []geometry.Primitive
	Props     []geometry.Primitive
	Materials []material.Descriptor
	Keys      []material.Key
}

// LoadMap fetches maps/<name>.bsp from p and loads it.
func LoadMap(ctx context.Context, name string, p asset.Provider, opts Options) (*Result, error) {
	path := asset.Normalize(name)
	if !strings.HasPrefix(path, "maps/") {
		path = "maps/" + path
	}
	if !strings.HasSuffix(path, ".bsp") {
		path += ".bsp"
	}
	data, err := p.Fetch(path)
	if err != nil {
		return nil, errors.Wrapf(err, "pipeline: level %s", name)
	}
	res, err := Load(ctx, data, p, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "pipeline: level %s", name)
	}
	return res, nil
}

// Load builds the world and prop primitives of a level container, then
// resolves every referenced material. Assets are looked up in the embedded
// pakfile first, then in p. Only an unreadable container or a missing world
// model fail the load; broken assets are logged and replaced. ctx is
// checked between stages.
func Load(ctx context.Context, data []byte, p asset.Provider, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := bsp.Parse(data)
	if err != nil {
		return nil, err
	}
	if _, err := f.WorldModel(); err != nil {
		return nil, err
	}

	chain := asset.Chain{}
	pak, err := f.Pak()
	switch {
	case err != nil:
		logger.Error("failed to open pakfile", failsoft.Err(err))
	case pak != nil:
		logger.Debug("pakfile opened", "files", pak.Len())
		chain = append(chain, pak)
	}
	chain = append(chain, p)

	ents, err := f.ParseEntities()
	if err != nil {
		logger.Error("failed to parse entities", failsoft.Err(err))
	}
	placements, err := prop.FromLevel(f, ents)
	if err != nil {
		logger.Error("failed to read static props", failsoft.Err(err))
		placements = prop.FromEntities(ents)
	}

	table := material.NewTable()
	res := &Result{}

	var g errgroup.Group
	g.Go(func() error {
		prims, err := world.Extract(f, f.BrushModels(ents), table)
		if err != nil {
			return err
		}
		res.World = prims
		return nil
	})
	g.Go(func() error {
		res.Props = prop.NewResolver(chain, table, logger).ResolveAll(placements, opts.Workers)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("geometry extracted", "world", len(res.World), "props", len(res.Props), "materials", table.Len())
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Keys = table.Keys()
	res.Materials = material.NewResolver(chain, logger).
		ResolveAll(res.Keys, batch.Pool{Workers: opts.Workers, Progress: opts.Progress})

	logger.Info("level loaded",
		"world", len(res.World),
		"props", len(res.Props),
		"placements", len(placements),
		"materials", len(res.Materials),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, nil
}
