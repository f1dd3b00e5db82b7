package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oxbi/heathfully/bot"
	"github.com/oxbi/heathfully/checker"
	"github.com/oxbi/heathfully/config"
	"github.com/oxbi/heathfully/fetch"
	"github.com/oxbi/heathfully/schedule"
)

// options carries the parsed flag values; resolveConfig applies only the
// ones the user actually passed, so a config file value is not clobbered
// by a flag default.
type options struct {
	shopURL         string
	timeout         time.Duration
	maxRetries      int
	retryBackoff    time.Duration
	retryBackoffMax time.Duration
	reportTitle     string
	cacheTTL        time.Duration
	schedulesFile   string
	metricsAddr     string
	verbose         bool
}

// resolveConfig layers configuration sources: built-in defaults, then the
// optional YAML file, then environment variables, then flags the user set
// explicitly.
func resolveConfig(configFile string, opts options, explicit map[string]bool) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		if err := config.LoadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if explicit["shop-url"] {
		cfg.ShopURL = opts.shopURL
	}
	if explicit["timeout"] {
		cfg.Timeout = opts.timeout
	}
	if explicit["max-retries"] {
		cfg.MaxRetries = opts.maxRetries
	}
	if explicit["retry-backoff"] {
		cfg.RetryBackoff = opts.retryBackoff
	}
	if explicit["retry-backoff-max"] {
		cfg.RetryBackoffMax = opts.retryBackoffMax
	}
	if explicit["report-title"] {
		cfg.ReportTitle = opts.reportTitle
	}
	if explicit["cache-ttl"] {
		cfg.CacheTTL = opts.cacheTTL
	}
	if explicit["schedules"] {
		cfg.SchedulesFile = opts.schedulesFile
	}
	if explicit["metrics-addr"] {
		cfg.MetricsAddr = opts.metricsAddr
	}
	if explicit["v"] {
		cfg.Verbose = opts.verbose
	}

	return cfg, nil
}

func applyEnv(cfg *config.Config) error {
	if value, ok := config.EnvString("SHOP_URL"); ok {
		cfg.ShopURL = value
	}
	if value, ok, err := config.EnvDuration("TIMEOUT"); err != nil {
		return fmt.Errorf("invalid TIMEOUT: %w", err)
	} else if ok {
		cfg.Timeout = value
	}
	if value, ok, err := config.EnvInt("MAX_RETRIES"); err != nil {
		return fmt.Errorf("invalid MAX_RETRIES: %w", err)
	} else if ok {
		cfg.MaxRetries = value
	}
	if value, ok := config.EnvString("SCHEDULES_FILE"); ok {
		cfg.SchedulesFile = value
	}
	if value, ok := config.EnvString("METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if token, ok := config.EnvString("TELEGRAM_BOT_TOKEN"); ok {
		cfg.TelegramToken = token
	}
	return nil
}

func main() {
	defaultCfg := config.DefaultConfig()

	shopURL := flag.String("shop-url", defaultCfg.ShopURL, "Catalog page to check")
	timeout := flag.Duration("timeout", defaultCfg.Timeout, "HTTP request timeout")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum fetch retry attempts")
	retryBackoff := flag.Duration("retry-backoff", defaultCfg.RetryBackoff, "Initial retry backoff")
	retryBackoffMax := flag.Duration("retry-backoff-max", defaultCfg.RetryBackoffMax, "Maximum retry backoff")
	reportTitle := flag.String("report-title", "", "Report title line (default built in)")
	cacheTTL := flag.Duration("cache-ttl", defaultCfg.CacheTTL, "Report cache TTL (0 disables caching)")
	schedulesFile := flag.String("schedules", defaultCfg.SchedulesFile, "Schedules JSON file path")
	metricsAddr := flag.String("metrics-addr", defaultCfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	configFile := flag.String("config", "", "Optional YAML config file")
	oneShot := flag.Bool("once", false, "Print one report to stdout and exit (no bot)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg, err := resolveConfig(*configFile, options{
		shopURL:         *shopURL,
		timeout:         *timeout,
		maxRetries:      *maxRetries,
		retryBackoff:    *retryBackoff,
		retryBackoffMax: *retryBackoffMax,
		reportTitle:     *reportTitle,
		cacheTTL:        *cacheTTL,
		schedulesFile:   *schedulesFile,
		metricsAddr:     *metricsAddr,
		verbose:         *verbose,
	}, explicit)
	if err != nil {
		slog.Error("resolving configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	fetcher, err := fetch.New(cfg)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		os.Exit(1)
	}
	chk := checker.New(cfg, fetcher)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *oneShot {
		runCtx, cancel := context.WithTimeout(ctx, 2*cfg.Timeout)
		defer cancel()
		text, err := chk.BuildReport(runCtx)
		if err != nil {
			slog.Error("building report", slog.Any("error", err))
			os.Exit(1)
		}
		fmt.Println(text)
		return
	}

	if cfg.TelegramToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN must be set (or use -once for a stdout report)")
		os.Exit(1)
	}

	store, err := schedule.NewStore(cfg.SchedulesFile)
	if err != nil {
		slog.Error("loading schedules", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler := schedule.NewScheduler()

	tgBot, err := bot.New(cfg.TelegramToken, chk, store, scheduler, chk.Metrics, 2*cfg.Timeout)
	if err != nil {
		slog.Error("starting bot", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(chk.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	tgBot.RestoreSchedules()
	scheduler.Start()

	slog.Info("bot running",
		slog.String("shop_url", cfg.ShopURL),
		slog.String("schedules_file", cfg.SchedulesFile),
	)
	tgBot.Run(ctx)

	slog.Info("shutdown signal received, draining jobs")
	scheduler.Stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
