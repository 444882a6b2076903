// Command samoyed-level is the composition root: open a Marlin serial
// port, optionally run a bed-leveling probe, then stream a G-code program
// through the rewriter to the firmware.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/doismellburning/samoyed-level/internal/applog"
	"github.com/doismellburning/samoyed-level/internal/config"
	"github.com/doismellburning/samoyed-level/internal/level"
	"github.com/doismellburning/samoyed-level/internal/marlin"
	"github.com/doismellburning/samoyed-level/internal/rewrite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "samoyed-level: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		port       string
		baud       int
		levelFlag  bool
		algoFlag   string
		gridNx     int
		gridNy     int
		left, right, top, bottom float64
		startZ, zSafe, travelFeed float64
		gcodeFile  string
		logDir     string
	)

	fs := pflag.NewFlagSet("samoyed-level", pflag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "path to a YAML control-parameter file")
	fs.StringVar(&port, "port", "", "serial device (auto-discovered via udev when empty)")
	fs.IntVar(&baud, "baud", 250000, "serial baud rate")
	fs.BoolVar(&levelFlag, "level", false, "run a bed-leveling probe before streaming")
	fs.StringVar(&algoFlag, "algorithm", "LINEAR", "leveling algorithm: SINGLE, LINEAR, or BICUBIC")
	fs.IntVar(&gridNx, "grid-nx", 5, "leveling grid columns")
	fs.IntVar(&gridNy, "grid-ny", 5, "leveling grid rows")
	fs.Float64Var(&left, "left", 20, "leveling area left X")
	fs.Float64Var(&right, "right", 180, "leveling area right X")
	fs.Float64Var(&bottom, "bottom", 20, "leveling area bottom Y")
	fs.Float64Var(&top, "top", 180, "leveling area top Y")
	fs.Float64Var(&startZ, "start-z", 10, "Z height before the first probe move")
	fs.Float64Var(&zSafe, "z-safe", 5, "retract clearance above each probed point")
	fs.Float64Var(&travelFeed, "travel-feed", 3000, "XY travel feedrate during probing")
	fs.StringVar(&gcodeFile, "file", "", "G-code program to stream after setup")
	fs.StringVar(&logDir, "log-dir", "", "directory to write a per-run session log (disabled when empty)")

	p := config.Default()
	config.RegisterFlags(fs, &p)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// Flags explicitly set on the command line still win over the file.
		setFlags := map[string]string{}
		fs.Visit(func(f *pflag.Flag) { setFlags[f.Name] = f.Value.String() })
		p = loaded
		for name, value := range setFlags {
			if err := fs.Set(name, value); err != nil {
				return err
			}
		}
	}

	logWriter := io.Writer(os.Stderr)
	if logDir != "" {
		sessionLog, err := marlin.OpenSessionLog(logDir, time.Now())
		if err != nil {
			return fmt.Errorf("opening session log: %w", err)
		}
		defer sessionLog.Close()
		logWriter = io.MultiWriter(os.Stderr, sessionLog)
	}
	log := applog.New(logWriter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if port == "" {
		candidates, err := marlin.DiscoverPorts()
		if err != nil {
			return fmt.Errorf("discovering serial ports: %w", err)
		}
		if len(candidates) == 0 {
			return fmt.Errorf("no serial port specified and none discovered; pass --port")
		}
		port = candidates[0].DevNode
		log.Info("auto-selected serial port", "port", port)
	}

	transport, err := marlin.OpenSerial(port, baud)
	if err != nil {
		return fmt.Errorf("opening %s: %w", port, err)
	}

	ctrl := marlin.New(transport,
		marlin.WithLogger(log),
		marlin.WithWaitSeconds(p.WaitTime),
		marlin.WithLogListener(func(line string) { log.Debug("firmware", "line", line) }),
	)
	defer ctrl.Close()

	log.Info("connecting", "port", port, "baud", baud)
	if err := ctrl.Connect(ctx); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if err := ctrl.AwaitIdle(ctx); err != nil {
		return fmt.Errorf("awaiting idle: %w", err)
	}

	var surf level.Surface

	if levelFlag {
		algo, err := parseAlgorithm(algoFlag)
		if err != nil {
			return err
		}

		req := level.Request{
			Algorithm:     algo,
			Left:          left,
			Right:         right,
			Top:           top,
			Bottom:        bottom,
			Nx:            gridNx,
			Ny:            gridNy,
			StartZ:        startZ,
			TravelFeed:    travelFeed,
			ZSafe:         zSafe,
			InitialOffset: p.ZLevelingOffset,
		}

		log.Info("starting bed level probe", "nx", gridNx, "ny", gridNy, "algorithm", algo)

		surf, err = level.Probe(ctx, ctrl, req, func(done, total int) {
			log.Info("probing", "done", done, "total", total)
		})
		if err != nil {
			return fmt.Errorf("leveling: %w", err)
		}
		log.Info("leveling complete", "zmin", surf.Grid().Zmin, "zmax", surf.Grid().Zmax, "mean", surf.Grid().Mean)
	}

	if gcodeFile == "" {
		return nil
	}

	stats, err := rewrite.StreamFile(ctx, gcodeFile, p, surf, ctrl, log, func(done, total int) {
		if done%100 == 0 {
			log.Info("streaming", "line", done, "total", total)
		}
	})
	if err != nil {
		return fmt.Errorf("streaming %s: %w", gcodeFile, err)
	}

	log.Info("stream complete",
		"lines", stats.LinesRead,
		"commands", stats.CommandsSent,
		"dropped", stats.FilterDrops,
		"parse_errors", stats.ParseErrors,
	)

	return ctrl.AwaitIdle(ctx)
}

func parseAlgorithm(s string) (level.Algorithm, error) {
	switch s {
	case "SINGLE":
		return level.Single, nil
	case "LINEAR":
		return level.Linear, nil
	case "BICUBIC":
		return level.Bicubic, nil
	default:
		return 0, fmt.Errorf("unknown leveling algorithm %q", s)
	}
}
