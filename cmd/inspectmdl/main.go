// inspectmdl dumps the sections of a studio model for debugging.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"bsp-map-loader/internal/asset"
	"bsp-map-loader/internal/config"
	"bsp-map-loader/internal/mdl"
)

func main() {
	gameDir := flag.String("game", "", "Game install directory (default: $"+config.GameDirEnv+")")
	raw := flag.Bool("raw", false, "Dump the parsed .mdl section")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inspectmdl [-game dir] [-raw] models/path/name.mdl")
		os.Exit(2)
	}
	path := flag.Arg(0)

	var cfg config.Config
	cfg.Resolve(config.Flags{GameDir: *gameDir})
	p, err := cfg.Providers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *raw {
		name := asset.Normalize(path)
		if !strings.HasSuffix(name, ".mdl") {
			name += ".mdl"
		}
		data, err := p.Fetch(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m, err := mdl.ParseMDL(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		spew.Config.MaxDepth = 4
		spew.Dump(m)
		return
	}

	model, err := mdl.Load(p, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Model: %s\n", model.Name)
	fmt.Printf("Search paths: %v\n", model.SearchPaths)
	fmt.Printf("Textures (%d):\n", len(model.Textures))
	for i, t := range model.Textures {
		fmt.Printf("  [%d] %s\n", i, t)
	}

	fmt.Printf("Skins: %d\n", model.SkinCount())
	for s := 0; s < model.SkinCount(); s++ {
		table, _ := model.SkinTable(s)
		var names []string
		for slot := 0; ; slot++ {
			name, ok := table.Texture(slot)
			if !ok {
				break
			}
			names = append(names, name)
		}
		fmt.Printf("  skin %d: %s\n", s, strings.Join(names, ", "))
	}

	verts, tris := 0, 0
	fmt.Printf("Meshes: %d\n", len(model.Meshes))
	for i, m := range model.Meshes {
		fmt.Printf("  mesh %d: body %d, material %d, %d verts, %d tris\n",
			i, m.BodyPart, m.Material, len(m.Vertices), len(m.Indices)/3)
		verts += len(m.Vertices)
		tris += len(m.Indices) / 3
	}
	fmt.Printf("Total: %d verts, %d tris\n", verts, tris)
}
