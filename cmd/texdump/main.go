// texdump resolves materials and writes their decoded textures as WebP
// thumbnails.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bsp-map-loader/internal/config"
	"bsp-map-loader/internal/material"
	"bsp-map-loader/internal/postprocess"
)

func main() {
	gameDir := flag.String("game", "", "Game install directory (default: $"+config.GameDirEnv+")")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	size := flag.Int("size", 256, "Thumbnail size in pixels, 0 for full size")
	searchPath := flag.String("search", "", "Comma-separated material search paths")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: texdump [flags] material [material...]")
		os.Exit(2)
	}

	var cfg config.Config
	cfg.Resolve(config.Flags{GameDir: *gameDir, OutputDir: *outputDir, LogLevel: "debug"})
	p, err := cfg.Providers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var paths []string
	if *searchPath != "" {
		paths = strings.Split(*searchPath, ",")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	resolver := material.NewResolver(p, logger)

	failed := 0
	for _, name := range flag.Args() {
		key := material.NewKey(name, paths)
		d, err := resolver.Load(key)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", key, err)
			failed++
			continue
		}

		fmt.Printf("OK   %s  color=%v translucent=%v", d.Name, d.Color, d.Translucent)
		if d.AlphaTest != nil {
			fmt.Printf(" alphatest=%.2f", *d.AlphaTest)
		}
		fmt.Println()

		base := filepath.Join(cfg.OutputDir, path.Base(key.Name))
		for suffix, tex := range map[string]*material.Texture{"": d.Texture, "_bump": d.BumpMap} {
			if tex == nil {
				continue
			}
			out := base + suffix + ".webp"
			if err := dump(tex, out, *size); err != nil {
				fmt.Printf("FAIL %s: %v\n", out, err)
				failed++
				continue
			}
			fmt.Printf("     %s %dx%d %s -> %s\n", tex.Name, tex.Width, tex.Height, tex.Format, out)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func dump(tex *material.Texture, out string, size int) error {
	img := tex.Image()
	if size <= 0 {
		return postprocess.WriteWebP(out, img)
	}
	return postprocess.WriteWebP(out, postprocess.Thumbnail(postprocess.CropAlpha(img), size))
}
