package playback

import (
	"context"
	"log/slog"
	"time"

	"github.com/rasel39/gigmarket/backend/pkg/storyclient"
)

// DefaultPollInterval is how often the feed is refetched so newly created
// stories surface without a manual refresh.
const DefaultPollInterval = 2 * time.Minute

// Fetcher retrieves the active story feed
type Fetcher interface {
	FetchStories(ctx context.Context) ([]storyclient.Story, error)
}

// Poller refetches the story feed on a fixed interval and hands the grouped
// result to its callback.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *slog.Logger
	onUpdate func([]Group)
}

// NewPoller creates a Poller. onUpdate receives the grouped feed after
// every successful fetch.
func NewPoller(fetcher Fetcher, interval time.Duration, logger *slog.Logger, onUpdate func([]Group)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger,
		onUpdate: onUpdate,
	}
}

// Start fetches once immediately and then on every tick until the context
// is canceled.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.RunOnce(ctx); err != nil {
		p.logger.Error("story feed fetch failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.logger.Error("story feed fetch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce performs a single fetch-and-group cycle
func (p *Poller) RunOnce(ctx context.Context) error {
	stories, err := p.fetcher.FetchStories(ctx)
	if err != nil {
		return err
	}
	p.onUpdate(GroupStories(stories))
	return nil
}
