// meshletc packs scene geometry into meshlet buffers for mesh-shading pipelines.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlet-lab/internal/config"
	"github.com/Faultbox/meshlet-lab/internal/logger"
)

func main() {
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	logger.Debug("starting", zap.String("command", command), zap.Any("limits", cfg.Limits()))

	switch command {
	case "build", "b":
		err = cmdBuild(cfg, rest)
	case "info", "i":
		err = cmdInfo(cfg, rest)
	case "dump":
		err = cmdDump(cfg, rest)
	case "cube":
		err = cmdCube(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		logger.Sync()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`meshletc - meshlet buffer builder

Usage:
  meshletc [flags] <command> [options]

Commands:
  build <scene.yaml|mesh.obj>    Build vertex and meshlet buffers
  info <meshlets.bin>            Show meshlet buffer statistics
  dump <meshlets.bin> [-n N]     Print meshlet descriptors and triangles
  cube                           Build the reference cube and print a summary

Flags:
  -config <file>        Config file (default ./meshletc.yaml)
  -max-vertices <n>     Unique vertices per meshlet (default 64)
  -max-triangles <n>    Triangles per meshlet (default 126)
  -out <dir>            Output directory for build
  -log-file <file>      Also write logs to a rotating file
  -debug                Debug logging

Examples:
  meshletc build scene.yaml
  meshletc -max-vertices 32 -out build build teapot.obj
  meshletc info build/meshlets.bin`)
}
