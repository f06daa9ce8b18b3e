// Command psurf tessellates a parametric surface described by a YAML config
// and writes the triangles as STL, OBJ and a PNG preview.
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soypat/psurf/internal/config"
	"github.com/soypat/psurf/internal/logger"
	"github.com/soypat/psurf/internal/preview"
	"github.com/soypat/psurf/render"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log, err := logger.New(cfg.Logging.Level, fileCfg, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	err = run(cfg, log)
	logger.Sync(log)
	if err != nil {
		log.Error("psurf failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if path := config.SavePath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
		log.Info("wrote config", zap.String("path", path))
	}
	s, err := cfg.Surface.BuildSurface()
	if err != nil {
		return err
	}
	rc, err := cfg.Tessellation.RenderConfig(log)
	if err != nil {
		return err
	}

	start := time.Now()
	ps, err := render.TessellatePatches(s, rc)
	if err != nil {
		return err
	}
	model := ps.Triangles()
	log.Info("tessellated",
		zap.String("surface", cfg.Surface.Kind),
		zap.Float64("tolerance", rc.Tolerance),
		zap.Int("patches", ps.Stats.Patches),
		zap.Int("discarded", ps.Stats.Discarded),
		zap.Int("dependencies", ps.Stats.Dependencies),
		zap.Int("triangles", len(model)),
		zap.Duration("elapsed", time.Since(start)),
	)

	var g errgroup.Group
	out := cfg.Output
	if out.STL != "" {
		g.Go(func() error {
			if err := render.CreateSTL(out.STL, render.NewSliceRenderer(model)); err != nil {
				return fmt.Errorf("writing %s: %w", out.STL, err)
			}
			log.Info("wrote mesh", zap.String("path", out.STL))
			return nil
		})
	}
	if out.OBJ != "" {
		g.Go(func() error {
			return writeFile(log, out.OBJ, func(w *bufio.Writer) error { return render.WriteOBJ(w, model, out.Weld) })
		})
	}
	if out.PNG != "" {
		g.Go(func() error {
			if err := preview.SavePNG(out.PNG, model, out.PNGSize); err != nil {
				return fmt.Errorf("writing %s: %w", out.PNG, err)
			}
			log.Info("wrote preview", zap.String("path", out.PNG))
			return nil
		})
	}
	return g.Wait()
}

// writeFile creates path and writes to it through a buffered writer.
func writeFile(log *zap.Logger, path string, write func(*bufio.Writer) error) (err error) {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(fp)
	if err = write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = w.Flush(); err != nil {
		return err
	}
	log.Info("wrote mesh", zap.String("path", path))
	return nil
}
