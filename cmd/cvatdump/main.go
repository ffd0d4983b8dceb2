// Package main provides the cvatdump CLI: inspect a CVAT task-backup
// archive and export frames with their annotations rendered on top.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/eyedl/cvat-reader/pkg/adapters/logger"
	"github.com/eyedl/cvat-reader/pkg/adapters/osfilesystem"
	"github.com/eyedl/cvat-reader/pkg/config"
	"github.com/eyedl/cvat-reader/pkg/cvat"
	"github.com/eyedl/cvat-reader/pkg/overlay"
	"github.com/eyedl/cvat-reader/pkg/ports"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "cvatdump",
		Usage:   "Inspect CVAT task-backup archives and export annotated frames.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file."},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: "Log level (debug, info, warn, error)."},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: "Suppress all log output."},
			&cli.StringFlag{Name: "ffmpeg", Usage: "Path to the ffmpeg binary."},
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "Print labels, frame count, and annotation coverage.",
				ArgsUsage: "<archive.zip>",
				Action:    runInfo,
			},
			{
				Name:      "dump",
				Usage:     "Walk frames and write annotated PNGs.",
				ArgsUsage: "<archive.zip>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output directory for PNG frames."},
					&cli.IntFlag{Name: "start", Value: -1, Usage: "First frame index (default: first annotated frame)."},
					&cli.IntFlag{Name: "count", Value: 0, Usage: "Number of frames to dump (0 = to the end)."},
					&cli.BoolFlag{Name: "no-video", Usage: "Skip media decoding; print annotations only."},
				},
				Action: runDump,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, ports.Logger, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path, osfilesystem.New())
		if err != nil {
			return cfg, nil, err
		}
		cfg = loaded
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.Quiet = true
	}
	if p := c.String("ffmpeg"); p != "" {
		cfg.FFmpegPath = p
	}

	var log ports.Logger
	if cfg.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}
	return cfg, log, nil
}

func archiveArg(c *cli.Context) (string, error) {
	if c.Args().Len() != 1 {
		return "", fmt.Errorf("expected exactly one archive path")
	}
	return c.Args().First(), nil
}

func runInfo(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	path, err := archiveArg(c)
	if err != nil {
		return err
	}

	ds, err := cvat.OpenWithOptions(path, cvat.Options{
		LoadVideo:  false,
		Logger:     log,
		FFmpegPath: cfg.FFmpegPath,
	})
	if err != nil {
		return err
	}
	defer ds.Close()

	fmt.Printf("frames: %d\n", ds.FrameCount())
	fmt.Println("labels:")
	for _, l := range ds.Labels() {
		fmt.Printf("  %3d  %-24s %s\n", l.ID, l.Name, l.Color)
	}

	annotated := 0
	for f := 0; f < ds.FrameCount(); f++ {
		if len(ds.AnnotationsAt(f)) > 0 {
			annotated++
		}
	}
	fmt.Printf("annotated frames: %d/%d\n", annotated, ds.FrameCount())
	return nil
}

func runDump(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	path, err := archiveArg(c)
	if err != nil {
		return err
	}
	if c.Bool("no-video") {
		cfg.LoadVideo = false
	}
	if out := c.String("out"); out != "" {
		cfg.Overlay.OutputDir = out
	}

	ds, err := cvat.OpenWithOptions(path, cvat.Options{
		LoadVideo:  cfg.LoadVideo,
		Logger:     log,
		FFmpegPath: cfg.FFmpegPath,
	})
	if err != nil {
		return err
	}
	defer ds.Close()

	if start := c.Int("start"); start >= 0 {
		if err := ds.Seek(start); err != nil {
			return err
		}
	} else {
		ds.SeekFirstAnnotation()
	}

	fsys := osfilesystem.New()
	if cfg.LoadVideo {
		if err := fsys.MkdirAll(cfg.Overlay.OutputDir); err != nil {
			return err
		}
	}
	renderer := overlay.New(ds.Labels(), cfg.OverlayTheme())

	remaining := c.Int("count")
	for {
		if c.Int("count") > 0 && remaining == 0 {
			break
		}
		frame, err := ds.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var decodeErr *ports.DecodeError
		if errors.As(err, &decodeErr) {
			log.Warn("Skipping frame %d: %v", decodeErr.Frame, decodeErr.Err)
			remaining--
			continue
		}
		if err != nil {
			return err
		}
		remaining--

		if frame.Image == nil {
			printAnnotations(frame)
			continue
		}
		img := renderer.Render(frame.Image, frame.Annotations)
		if cfg.Overlay.ScaleWidth > 0 && cfg.Overlay.ScaleHeight > 0 {
			img = overlay.Scale(img, cfg.Overlay.ScaleWidth, cfg.Overlay.ScaleHeight)
		}
		if err := writePNG(filepath.Join(cfg.Overlay.OutputDir, fmt.Sprintf("frame_%06d.png", frame.Index)), img); err != nil {
			return err
		}
	}
	return nil
}

func printAnnotations(frame *cvat.Frame) {
	for _, a := range frame.Annotations {
		marker := " "
		if a.Interpolated {
			marker = "~"
		}
		fmt.Printf("%6d %s %-24s (%d,%d)-(%d,%d) occluded=%t outside=%t\n",
			frame.Index, marker, a.Label, a.Box.X1, a.Box.Y1, a.Box.X2, a.Box.Y2, a.Occluded, a.Outside)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
