// Command adaptived attaches the adaptive eviction engine to a cgroup
// scope, watches a directory to build the inode scope, and reports every
// policy switch the controller commits.
//
// Without a trace the process only observes; with --trace it replays a
// page lifecycle trace through the engine, which is the supported way to
// exercise a policy decision offline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/lysgoup/adaptived/engine"
	"github.com/lysgoup/adaptived/watchlist"
)

type config struct {
	WatchDir   string `koanf:"watch_dir"`
	CgroupPath string `koanf:"cgroup_path"`
	Trace      string `koanf:"trace"`
	EventsOut  string `koanf:"events_out"`
	LogLevel   string `koanf:"log_level"`

	CacheSize    uint64 `koanf:"cache_size"`
	CompatEvents bool   `koanf:"compat_events"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "adaptived: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	// The cgroup handle scopes the engine; it must be openable read-only
	// before anything else starts.
	cg, err := os.Open(cfg.CgroupPath)
	if err != nil {
		return fmt.Errorf("open cgroup path: %w", err)
	}
	defer cg.Close()

	wl, err := watchlist.New(cfg.WatchDir, watchlist.Options{Logger: &log})
	if err != nil {
		return err
	}
	defer wl.Close()

	sink := engine.NewChannelSink(64)
	var events engine.Sink = sink
	var out *os.File
	if cfg.EventsOut != "" {
		out, err = os.Create(cfg.EventsOut)
		if err != nil {
			return fmt.Errorf("events out: %w", err)
		}
		defer out.Close()
		events = teeSink{sink, &engine.WriterSink{W: out, Compat: cfg.CompatEvents}}
	}

	opts := engine.Options{
		CacheSizeEstimate: cfg.CacheSize,
		Watch:             wl,
		Events:            events,
		Logger:            &log,
	}
	if cfg.Trace != "" {
		// Trace inodes are synthetic; scoping them to the watched
		// directory would filter the whole replay out.
		opts.Watch = nil
		log.Debug().Msg("trace replay: inode watchlist bypassed")
	}
	eng, err := engine.New(opts)
	if err != nil {
		return err
	}
	defer eng.Close()

	printBanner(wl.Dir(), cfg.CgroupPath)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-sink.C:
				printEvent(os.Stdout, ev)
			}
		}
	})
	if cfg.Trace != "" {
		g.Go(func() error {
			defer stop() // trace end means there is nothing left to observe
			return replayTrace(ctx, eng, cfg.Trace, log)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	// Flush whatever the consumer had not picked up yet.
	for {
		select {
		case ev := <-sink.C:
			printEvent(os.Stdout, ev)
		default:
			log.Info().Msg("shutting down")
			return nil
		}
	}
}

// loadConfig merges defaults <- optional YAML file <- ADAPTIVED_* env <-
// flags, then validates the two mandatory options.
func loadConfig(args []string) (config, error) {
	f := flag.NewFlagSet("adaptived", flag.ContinueOnError)
	f.StringP("watch_dir", "w", "", "directory to watch (required)")
	f.StringP("cgroup_path", "c", "", "path to cgroup, e.g. /sys/fs/cgroup/cache_test (required)")
	f.String("config", "", "optional YAML config file")
	f.String("trace", "", "page lifecycle trace to replay ('-' for stdin)")
	f.String("events_out", "", "write binary switch-event records to this file")
	f.String("log_level", "info", "trace|debug|info|warn|error")
	f.Uint64("cache_size", engine.DefaultCacheSizeEstimate, "cache size estimate in pages")
	f.Bool("compat_events", false, "emit event records without working-set fields")

	cfg := config{}
	if err := f.Parse(args); err != nil {
		return cfg, err
	}

	k := koanf.New(".")
	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("config file: %w", err)
		}
	}
	if err := k.Load(env.Provider("ADAPTIVED_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ADAPTIVED_"))
	}), nil); err != nil {
		return cfg, err
	}
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return cfg, err
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}

	if cfg.WatchDir == "" {
		return cfg, errors.New("missing required argument: watch_dir")
	}
	if cfg.CgroupPath == "" {
		return cfg, errors.New("missing required argument: cgroup_path")
	}
	return cfg, nil
}

// teeSink fans one event out to both consumers; delivery succeeds if
// either accepted the record.
type teeSink [2]engine.Sink

func (t teeSink) Emit(e engine.SwitchEvent) bool {
	a := t[0].Emit(e)
	b := t[1].Emit(e)
	return a || b
}
