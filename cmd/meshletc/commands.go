package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlet-lab/internal/config"
	"github.com/Faultbox/meshlet-lab/internal/logger"
	"github.com/Faultbox/meshlet-lab/internal/perf"
	"github.com/Faultbox/meshlet-lab/pkg/formats"
	"github.com/Faultbox/meshlet-lab/pkg/meshlet"
	"github.com/Faultbox/meshlet-lab/pkg/scene"
)

// loadScene reads a manifest, or wraps a bare OBJ file in a one-entity scene.
func loadScene(path string) (*scene.Scene, error) {
	if strings.EqualFold(filepath.Ext(path), ".obj") {
		obj, err := formats.ParseOBJFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return scene.Single(name, scene.MeshFromOBJ(obj)), nil
	}
	return scene.LoadManifest(path)
}

// buildResult is what a build writes to disk.
type buildResult struct {
	VertexPath  string
	MeshletPath string
	Vertices    int
	Meshlets    int
	Triangles   int
}

// buildScene runs the load/build/encode/write pipeline.
func buildScene(cfg *config.Config, input string, inst *perf.Instrumenter) (*buildResult, error) {
	log := logger.Named("build")

	inst.Start("load")
	sc, err := loadScene(input)
	if err != nil {
		inst.End()
		return nil, fmt.Errorf("loading %s: %w", input, err)
	}
	renderable := sc.Renderable()
	log.Info("scene loaded",
		zap.String("scene", sc.Name),
		zap.Int("entities", len(sc.Entities)),
		zap.Int("renderable", len(renderable)),
	)

	inst.Start("build")
	md, err := sc.Build(cfg.Limits())
	if err != nil {
		inst.End()
		return nil, fmt.Errorf("building meshlets: %w", err)
	}
	triangles := 0
	for _, e := range renderable {
		triangles += e.Mesh.TriangleCount()
	}
	inst.EndWithTriangles(triangles)

	inst.Start("encode")
	vertexData, err := meshlet.EncodeVertices(md.Vertices)
	if err != nil {
		inst.End()
		return nil, err
	}

	inst.Start("write")
	defer inst.End()
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	res := &buildResult{
		VertexPath:  filepath.Join(cfg.Output.Dir, cfg.Output.VertexFile),
		MeshletPath: filepath.Join(cfg.Output.Dir, cfg.Output.MeshletFile),
		Vertices:    len(md.Vertices),
		Meshlets:    md.NumMeshlets,
		Triangles:   triangles,
	}
	if err := os.WriteFile(res.VertexPath, vertexData, 0644); err != nil {
		return nil, fmt.Errorf("writing vertices: %w", err)
	}
	if err := os.WriteFile(res.MeshletPath, md.Meshlets, 0644); err != nil {
		return nil, fmt.Errorf("writing meshlets: %w", err)
	}

	log.Info("buffers written",
		zap.String("vertices", res.VertexPath),
		zap.Int("vertex_bytes", len(vertexData)),
		zap.String("meshlets", res.MeshletPath),
		zap.Int("meshlet_bytes", len(md.Meshlets)),
	)
	return res, nil
}

func cmdBuild(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshletc build <scene.yaml|mesh.obj>")
		os.Exit(1)
	}

	inst := perf.New(logger.Named("perf"))
	res, err := buildScene(cfg, fs.Arg(0), inst)
	if err != nil {
		return err
	}
	inst.Report()

	fmt.Printf("verts:     %d\n", res.Vertices)
	fmt.Printf("triangles: %d\n", res.Triangles)
	fmt.Printf("meshlets:  %d\n", res.Meshlets)
	fmt.Printf("wrote %s, %s\n", res.VertexPath, res.MeshletPath)
	return nil
}

// readPacked loads and validates a meshlet buffer file.
func readPacked(cfg *config.Config, path string) (*meshlet.Packed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meshlet file: %w", err)
	}
	p, err := meshlet.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := p.CheckStructure(); err != nil {
		return nil, fmt.Errorf("corrupt meshlet buffer %s: %w", path, err)
	}
	if err := p.CheckCapacity(cfg.Limits()); err != nil {
		// not fatal: the file may have been built with other limits
		logger.Warn("meshlet buffer does not satisfy configured limits", zap.Error(err))
	}
	return p, nil
}

func printSummary(s meshlet.Summary, limits meshlet.Limits) {
	fmt.Printf("Meshlets:    %d\n", s.Meshlets)
	fmt.Printf("Triangles:   %d\n", s.Triangles)
	fmt.Printf("Vertex refs: %d\n", s.VertexRefs)
	fmt.Printf("Size:        %d bytes\n", s.Bytes)
	fmt.Println()
	fmt.Printf("Largest meshlet: %d vertices, %d triangles (limits %d/%d)\n",
		s.MaxVertices, s.MaxTriangles, limits.MaxVertices, limits.MaxTriangles)
	fmt.Printf("Mean fill:       %.1f%% vertices, %.1f%% triangles\n",
		100*s.VertexFill(limits), 100*s.TriangleFill(limits))
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshletc info <meshlets.bin>")
		os.Exit(1)
	}

	p, err := readPacked(cfg, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:    %s\n", args[0])
	fmt.Printf("Header:  vertex indices @ word %d, primitive indices @ word %d\n",
		p.Header.VertexIndicesOffset, p.Header.PrimitiveIndicesOffset)
	printSummary(p.Summary(), cfg.Limits())
	return nil
}

func cmdDump(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N meshlets (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshletc dump <meshlets.bin> [-n N]")
		os.Exit(1)
	}

	p, err := readPacked(cfg, fs.Arg(0))
	if err != nil {
		return err
	}

	for i, d := range p.Descriptors {
		if *limit > 0 && i >= *limit {
			fmt.Fprintf(os.Stderr, "\n(showing first %d of %d meshlets, use -n 0 for all)\n", *limit, len(p.Descriptors))
			break
		}
		m := p.Meshlet(i)
		fmt.Printf("meshlet %d: %d vertices @%d, %d triangles @%d\n",
			i, d.VertexCount, d.VertexBegin, d.PrimitiveCount, d.PrimitiveBegin)
		fmt.Printf("  vertices: %v\n", m.Vertices)
		for t, tri := range m.Triangles {
			fmt.Printf("  tri %3d: local %v -> global [%d %d %d]\n",
				t, tri, m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]])
		}
	}
	return nil
}

func cmdCube(cfg *config.Config) error {
	md, err := scene.Single("cube", scene.Cube()).Build(cfg.Limits())
	if err != nil {
		return err
	}

	p, err := meshlet.Decode(md.Meshlets)
	if err != nil {
		return err
	}
	if err := p.Validate(cfg.Limits()); err != nil {
		return err
	}

	fmt.Printf("verts: %d\n", len(md.Vertices))
	printSummary(p.Summary(), cfg.Limits())
	return nil
}
