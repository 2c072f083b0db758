package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"bsp-map-loader/internal/config"
	"bsp-map-loader/internal/export"
	"bsp-map-loader/internal/geometry"
	"bsp-map-loader/internal/pipeline"
	"bsp-map-loader/internal/postprocess"
	"bsp-map-loader/internal/raster"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	gameDir := flag.String("game", "", "Game install directory (default: $"+config.GameDirEnv+")")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	writeGLTF := flag.Bool("gltf", false, "Write <map>.glb")
	writeManifest := flag.Bool("manifest", false, "Write <map>.json material manifest")
	preview := flag.Int("preview", 0, "Write <map>.webp preview of this size")
	topDown := flag.Bool("top", false, "Render the preview top-down")
	flat := flag.Bool("flat", false, "Render the preview with average texture colors")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <map>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	mapName := flag.Arg(0)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		GameDir:   *gameDir,
		OutputDir: *outputDir,
		Workers:   *workers,
		LogLevel:  *logLevel,
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	providers, err := cfg.Providers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading %s\n", mapName)
	fmt.Printf("Search: %v, Workers: %d\n", cfg.SearchDirs, cfg.Workers)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := pipeline.LoadMap(ctx, mapName, providers, pipeline.Options{
		Logger:  logger,
		Workers: cfg.Workers,
		Progress: func(done, total int, rate float64) {
			fmt.Printf("  materials %d/%d (%.0f/s)\n", done, total, rate)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	printSummary(res)

	base := filepath.Join(cfg.OutputDir, filepath.Base(mapName))
	failed := false
	if *writeGLTF {
		if err := export.WriteFile(res, base+".glb"); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing glTF: %v\n", err)
			failed = true
		} else {
			fmt.Printf("glTF: %s.glb\n", base)
		}
	}
	if *writeManifest {
		if err := export.WriteManifest(base+".json", mapName, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing manifest: %v\n", err)
			failed = true
		} else {
			fmt.Printf("Manifest: %s.json\n", base)
		}
	}
	if *preview > 0 {
		view := raster.DefaultView
		if *topDown {
			view = raster.TopView
		}
		img := raster.Render(raster.Scene{
			Primitives: append(append([]geometry.Primitive{}, res.World...), res.Props...),
			Materials:  res.Materials,
		}, raster.Options{Width: *preview, Supersample: 2, View: view, Flat: *flat})
		if err := postprocess.WriteWebP(base+".webp", img); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing preview: %v\n", err)
			failed = true
		} else {
			fmt.Printf("Preview: %s.webp\n", base)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func printSummary(res *pipeline.Result) {
	var worldTris, propTris int
	for _, p := range res.World {
		worldTris += p.Mesh.TriangleCount()
	}
	for _, p := range res.Props {
		propTris += p.Mesh.TriangleCount()
	}
	fallbacks := 0
	for _, m := range res.Materials {
		if m.Fallback {
			fallbacks++
		}
	}

	fmt.Printf("World: %d primitives, %d triangles\n", len(res.World), worldTris)
	fmt.Printf("Props: %d primitives, %d triangles\n", len(res.Props), propTris)
	fmt.Printf("Materials: %d (%d missing)\n", len(res.Materials), fallbacks)
	if fallbacks == 0 {
		return
	}

	limit := 20
	fmt.Printf("\nMissing materials:\n")
	for i, m := range res.Materials {
		if !m.Fallback {
			continue
		}
		if limit == 0 {
			fmt.Printf("  ... and more\n")
			break
		}
		limit--
		fmt.Printf("  %s\n", res.Keys[i])
	}
}
