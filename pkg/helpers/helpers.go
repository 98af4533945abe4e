package helpers

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/go-mclib/physics/pkg/physics"
	"github.com/go-mclib/physics/pkg/scene"
	"github.com/go-mclib/physics/pkg/tui"
)

//go:embed default_scene.yaml
var defaultScene []byte

// Flags holds common CLI flags for example programs.
type Flags struct {
	Scene       string
	TPS         int
	Ticks       int
	Verbose     bool
	Debug       bool
	Interactive bool
}

// RegisterFlags registers the standard CLI flags on the default flag set.
func RegisterFlags(f *Flags) {
	flag.StringVar(&f.Scene, "scene", "", "scene file (YAML); empty loads the built-in demo scene")
	flag.IntVar(&f.TPS, "tps", physics.TicksPerSecond, "ticks per second")
	flag.IntVar(&f.Ticks, "ticks", 0, "stop after this many ticks (0 = run until interrupted)")
	flag.BoolVar(&f.Verbose, "v", false, "verbose logging")
	flag.BoolVar(&f.Debug, "debug", false, "panic on non-finite body state instead of rolling back")
	flag.BoolVar(&f.Interactive, "i", false, "enable the interactive terminal sandbox")
}

// Interval returns the tick interval for the configured tick rate.
func (f Flags) Interval() time.Duration {
	if f.TPS <= 0 {
		return physics.TickDuration
	}
	return time.Second / time.Duration(f.TPS)
}

// NewWorld builds a world from the scene named by the flags, or the demo scene.
func NewWorld(f Flags) (*physics.World, error) {
	var (
		s   *scene.Scene
		err error
	)
	if f.Scene != "" {
		s, err = scene.Load(f.Scene)
	} else {
		s, err = scene.Parse(defaultScene)
	}
	if err != nil {
		return nil, err
	}

	w, _, err := s.Build()
	if err != nil {
		return nil, err
	}
	w.Verbose = f.Verbose
	w.Debug = f.Debug
	return w, nil
}

// Run ticks the world until ctx is done or the tick limit is reached. In
// interactive mode the terminal sandbox drives the world instead and Run
// returns when it quits.
func Run(ctx context.Context, w *physics.World, f Flags) error {
	interval := f.Interval()

	if f.Interactive {
		tuiProgram, writer := tui.Start(w, interval)
		w.Logger = log.New(writer, "", log.LstdFlags)
		defer tuiProgram.Quit()

		tuiDone := make(chan error, 1)
		go func() {
			_, err := tuiProgram.Run()
			tuiDone <- err
		}()

		select {
		case err := <-tuiDone:
			return err
		case <-ctx.Done():
			return nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	report := f.TPS
	if report <= 0 {
		report = physics.TicksPerSecond
	}
	w.OnTick(func(dt float64) {
		st := w.Stats()
		if st.Ticks%uint64(report) == 0 {
			logBodies(w)
		}
		if f.Ticks > 0 && st.Ticks >= uint64(f.Ticks) {
			cancel()
		}
	})

	w.Logger.Printf("[Physics] running %d bodies at %v per tick", len(w.Bodies()), interval)
	err := w.Run(ctx, interval)
	logBodies(w)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func logBodies(w *physics.World) {
	st := w.Stats()
	for _, b := range w.Bodies() {
		if b.Static() {
			continue
		}
		p := b.Position()
		w.Logger.Printf("[Physics] tick %d: %s at (%.2f, %.2f, %.2f) v=(%.2f, %.2f, %.2f) resting=%v asleep=%v",
			st.Ticks, b, p.X(), p.Y(), p.Z(), b.Velocity.X(), b.Velocity.Y(), b.Velocity.Z(), b.Resting, b.Asleep())
	}
}
