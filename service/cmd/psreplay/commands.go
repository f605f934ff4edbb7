// cmd/psreplay/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/showdown-ai/psbot/engine/dex"
	"github.com/showdown-ai/psbot/engine/fault"
	"github.com/showdown-ai/psbot/service/internal/battle"
	"github.com/showdown-ai/psbot/service/internal/config"
	"github.com/showdown-ai/psbot/service/internal/feed"
	"github.com/showdown-ai/psbot/service/internal/publish"
)

var (
	metricsAddr string
	maxParallel int
	perspective string

	rootCmd = &cobra.Command{
		Use:           "psreplay",
		Short:         "Track battle beliefs from recorded or live event streams",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	replayCmd = &cobra.Command{
		Use:   "replay FILE...",
		Short: "Replay JSON-lines event logs, several battles at once",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runReplay,
	}

	listenCmd = &cobra.Command{
		Use:   "listen URL",
		Short: "Follow a live websocket event feed",
		Args:  cobra.ExactArgs(1),
		RunE:  runListen,
	}

	dexCmd = &cobra.Command{
		Use:   "dex FILE",
		Short: "Validate a rule data file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDex,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides PSBOT_METRICS_ADDR)")
	rootCmd.PersistentFlags().StringVar(&perspective, "perspective", "", "side whose team is fully known: p1 or p2 (overrides PSBOT_PERSPECTIVE)")
	replayCmd.Flags().IntVarP(&maxParallel, "parallel", "j", 0, "battles replayed at once (overrides PSBOT_MAX_PARALLEL)")

	rootCmd.AddCommand(replayCmd, listenCmd, dexCmd)
}

// app bundles what every battle command needs.
type app struct {
	cfg   config.Config
	dex   *dex.Dex
	log   *logrus.Logger
	pub   battle.Publisher
	close func()
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if maxParallel > 0 {
		cfg.MaxParallel = maxParallel
	}
	if perspective != "" {
		cfg.Perspective = perspective
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &app{cfg: cfg, log: cfg.Logger(), close: func() {}}
	if cfg.DexPath != "" {
		rt.dex, err = dex.LoadFile(cfg.DexPath)
	} else {
		rt.dex, err = dex.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load dex: %w", err)
	}

	var closers []func()
	if cfg.RedisAddr != "" {
		pub, client, err := publish.Dial(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return nil, err
		}
		rt.pub = pub
		closers = append(closers, func() { closeRedis(rt.log, client) })
		rt.log.WithField("channel", cfg.RedisChannel).Info("publishing snapshots to redis")
	}
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(rt.log, cfg.MetricsAddr)
		closers = append(closers, func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		})
	}
	rt.close = func() {
		for _, c := range closers {
			c()
		}
	}
	return rt, nil
}

func closeRedis(log logrus.FieldLogger, client *redis.Client) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("close redis")
	}
}

func serveMetrics(log logrus.FieldLogger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.WithField("addr", addr).Info("serving metrics")
	return srv
}

func (rt *app) session(fields logrus.Fields) *battle.Session {
	opts := []battle.Option{battle.WithLogger(rt.log.WithFields(fields))}
	if rt.pub != nil {
		opts = append(opts, battle.WithPublisher(rt.pub))
	}
	return battle.New(rt.cfg, rt.dex, opts...)
}

// outcome is the per-battle line printed after a run.
type outcome struct {
	name   string
	events int
	turn   int
	err    error
}

func (o outcome) String() string {
	if o.err != nil {
		code := fault.CodeOf(o.err)
		if code == "" {
			code = "ERROR"
		}
		return fmt.Sprintf("%s: %s after %d events: %v", o.name, code, o.events, o.err)
	}
	return fmt.Sprintf("%s: ok, %d events, turn %d", o.name, o.events, o.turn)
}

// track runs one stream to completion and closes the session.
func track(ctx context.Context, s *battle.Session, src feed.Source, name string) outcome {
	err := feed.Run(ctx, src, s)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	if srcErr := src.Close(); srcErr != nil && err == nil {
		err = srcErr
	}
	return outcome{name: name, events: s.Seq(), turn: s.Snapshot().Turn, err: err}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	results := replayAll(ctx, rt, args)
	return report(cmd.OutOrStdout(), results)
}

// replayAll replays each file in its own goroutine, at most MaxParallel at a
// time. Battles are independent: one failing does not cancel the others.
func replayAll(ctx context.Context, rt *app, paths []string) []outcome {
	results := make([]outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.cfg.MaxParallel)
	for i, path := range paths {
		g.Go(func() error {
			src, err := feed.OpenFile(path)
			if err != nil {
				results[i] = outcome{name: path, err: err}
				return nil
			}
			s := rt.session(logrus.Fields{"file": path})
			results[i] = track(gctx, s, src, path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func report(w io.Writer, results []outcome) error {
	failed := 0
	for _, r := range results {
		fmt.Fprintln(w, r)
		if r.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d battles failed", failed, len(results))
	}
	return nil
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	src, err := feed.Dial(ctx, args[0])
	if err != nil {
		return err
	}
	s := rt.session(logrus.Fields{"url": args[0]})
	return report(cmd.OutOrStdout(), []outcome{track(ctx, s, src, args[0])})
}

func runDex(cmd *cobra.Command, args []string) error {
	d, err := dex.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	c := d.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d types, %d species, %d moves, %d abilities, %d items\n",
		args[0], c.Types, c.Species, c.Moves, c.Abilities, c.Items)
	return nil
}
