package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-webui-client/internal/config"
	"github.com/samvad-hq/samvad-webui-client/internal/logger"
	"github.com/samvad-hq/samvad-webui-client/internal/notify"
	"github.com/samvad-hq/samvad-webui-client/internal/storage"
	"github.com/samvad-hq/samvad-webui-client/internal/watcher"
)

// Watcher is the payment watch runtime. It owns the poll loop, the publisher fanout and
// the delivery ledger, and releases both when Run returns.
type Watcher struct {
	cfg      *config.Config
	fanout   *notify.Fanout
	service  *watcher.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger, src watcher.TransactionSource, opts watcher.Options) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if src == nil {
		return nil, fmt.Errorf("transaction source must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	pubCfgs, err := notify.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	if len(pubCfgs) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubs, err := notify.BuildAll(ctx, notify.DefaultRegistry(), pubCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := notify.NewFanout(pubs)
	summaries := make([]map[string]string, 0, len(pubCfgs))
	for _, pc := range pubCfgs {
		summaries = append(summaries, map[string]string{"id": pc.ID, "type": pc.Type})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	if opts.MaxPages <= 0 {
		opts.MaxPages = cfg.WatchMaxPages
	}
	if opts.PageSize <= 0 {
		opts.PageSize = cfg.WatchPageSize
	}
	if opts.Token == "" {
		opts.Token = cfg.APIToken
	}

	return &Watcher{
		cfg:      cfg,
		fanout:   fanout,
		service:  watcher.NewService(src, fanout, store, log, opts),
		interval: cfg.WatchInterval,
		log:      log,
		store:    store,
	}, nil
}

// Run polls until ctx is cancelled. A failed pass is logged and the loop continues.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.Close()

	w.log.InfoObj("watch loop starting", "watch_state", map[string]any{
		"publishers_count": w.fanout.Size(),
		"interval":         w.interval.String(),
	})

	w.runOnce(ctx, "initial watch pass failed")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watch loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			w.runOnce(ctx, "scheduled watch pass failed")
		}
	}
}

// RunOnce executes a single pass and releases resources.
func (w *Watcher) RunOnce(ctx context.Context) (watcher.Result, error) {
	if w == nil || w.service == nil {
		return watcher.Result{}, fmt.Errorf("watcher is not initialized")
	}
	defer w.Close()
	return w.service.RunOnce(ctx)
}

func (w *Watcher) runOnce(ctx context.Context, failMsg string) {
	start := time.Now()
	res, err := w.service.RunOnce(ctx)
	if err != nil {
		w.log.ErrorObj(failMsg, "error", err.Error())
		return
	}
	w.log.DebugObj("watch pass finished", "watch_meta", map[string]any{
		"published":  res.Published,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// Close releases the publishers and the ledger. It is safe to call more than once.
func (w *Watcher) Close() {
	if w == nil {
		return
	}
	if w.fanout != nil {
		if err := w.fanout.Close(); err != nil {
			w.log.ErrorObj("publisher close failed", "error", err.Error())
		}
		w.fanout = nil
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err.Error())
		}
		w.store = nil
	}
}
