package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tuannm99/lruk/internal"
	"github.com/tuannm99/lruk/internal/metrics"
	"github.com/tuannm99/lruk/internal/policy"
	"github.com/tuannm99/lruk/internal/server"
	"github.com/tuannm99/lruk/internal/sim"
	"github.com/tuannm99/lruk/internal/trace"
	"github.com/tuannm99/lruk/pkg/lruk"
	"github.com/tuannm99/lruk/pkg/util"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	tracePath := flag.String("trace", "", "Trace file to replay (overrides sim.trace)")
	policyName := flag.String("policy", "", "Replacement policy: lru-k or clock")
	capacity := flag.Int("capacity", 0, "Number of frames (overrides replacer.capacity)")
	k := flag.Int("k", 0, "History depth (overrides replacer.k)")
	gen := flag.Int("gen", 0, "Write a synthetic trace with this many accesses to -trace and exit")
	pages := flag.Int("pages", 1024, "Distinct pages in a generated trace")
	flag.Parse()

	cfg, err := internal.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lruksim: %v\n", err)
		os.Exit(1)
	}
	if *tracePath != "" {
		cfg.Sim.Trace = *tracePath
	}
	if *policyName != "" {
		cfg.Replacer.Policy = *policyName
	}
	if *capacity > 0 {
		cfg.Replacer.Capacity = *capacity
	}
	if *k > 0 {
		cfg.Replacer.K = *k
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "lruksim: %v\n", err)
		os.Exit(1)
	}

	lvl, _ := internal.ParseLevel(cfg.Log.Level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	if cfg.Sim.Trace == "" {
		slog.Error("lruksim: no trace given (-trace or sim.trace)")
		os.Exit(2)
	}

	if *gen > 0 {
		if err := generate(cfg.Sim.Trace, trace.Compression(cfg.Sim.Compression), *gen, *pages); err != nil {
			slog.Error("lruksim: generate trace", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("lruksim: run", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *internal.LruKConfig) error {
	repl, err := policy.New(cfg.Replacer)
	if err != nil {
		return err
	}
	instrumented := policy.Instrument(repl, cfg.Replacer.Policy)

	if cfg.Metrics.Enabled {
		srv := server.New(cfg.Metrics.Addr, instrumented)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("lruksim: metrics server shutdown", "err", err)
			}
		}()
	}

	src, err := trace.Open(cfg.Sim.Trace, trace.Compression(cfg.Sim.Compression))
	if err != nil {
		return err
	}
	defer util.Close(src, "trace")

	s := sim.New(cfg.Replacer.Policy, instrumented, cfg.Replacer.Capacity, sim.WithPinWindow(cfg.Sim.PinWindow))

	var baseline *sim.Baseline
	if cfg.Sim.Baseline {
		if baseline, err = sim.NewBaseline(cfg.Replacer.Capacity); err != nil {
			return err
		}
	}

	res, err := sim.Run(ctx, src, s, baseline)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	metrics.SetHitRatio(res.Policy, res.HitRatio())
	fmt.Println(res)
	if baseline != nil {
		b := baseline.Result()
		metrics.SetHitRatio(b.Policy, b.HitRatio())
		fmt.Println(b)
	}
	return nil
}

// generate writes a skewed trace: a hot set drawn from a Zipf distribution
// interleaved with sequential scans.
func generate(path string, c trace.Compression, n, pages int) error {
	if pages < 2 {
		pages = 2
	}
	if c == trace.CompressionAuto {
		c = trace.Detect(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer util.Close(f, "trace")

	w, err := trace.NewWriter(f, c)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(uint64(n), uint64(pages)))
	zipf := rand.NewZipf(rng, 1.1, 1, uint64(pages-1))
	scan := uint64(0)
	for i := range n {
		a := trace.Access{Page: zipf.Uint64(), Type: lruk.AccessLookup}
		if i%10 == 9 {
			a = trace.Access{Page: uint64(pages) + scan, Type: lruk.AccessScan}
			scan++
		}
		if err := w.Write(a); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	slog.Info("lruksim: trace written", "path", path, "accesses", n, "compression", string(c))
	return nil
}
