package location

import (
	"context"
	"sync"
	"time"

	"github.com/benmeehan/fog-agent/pkg/geo"
	"github.com/rs/zerolog"
)

// PositionOptions controls a one-shot position request.
type PositionOptions struct {
	HighAccuracy bool
	// Timeout bounds the provider call. Zero means no extra bound.
	Timeout time.Duration
	// MaximumAge allows a cached fix at most this old to be returned.
	MaximumAge time.Duration
}

// WatchOptions controls a continuous subscription.
type WatchOptions struct {
	HighAccuracy bool
	// DistanceFilter is the minimum movement in meters before a new fix is delivered.
	DistanceFilter float64
	// Interval is how often the provider is polled.
	Interval time.Duration
	// Timeout bounds each poll. Zero uses Interval.
	Timeout time.Duration
	// Since, when set, is treated as already delivered so a first poll at the
	// same place is filtered out.
	Since *Location
}

// DefaultPositionOptions are used for the initial fix on startup.
var DefaultPositionOptions = PositionOptions{
	HighAccuracy: true,
	Timeout:      20 * time.Second,
	MaximumAge:   time.Second,
}

// DefaultWatchOptions are used for the long-lived subscription.
var DefaultWatchOptions = WatchOptions{
	HighAccuracy:   true,
	DistanceFilter: 10,
	Interval:       5 * time.Second,
}

// Handler receives watch deliveries. Both methods are called from the
// watching goroutine, one at a time.
type Handler interface {
	OnLocation(loc Location)
	OnError(err error)
}

// HandlerFuncs adapts two functions to a Handler. Nil fields are ignored.
type HandlerFuncs struct {
	Location func(Location)
	Error    func(error)
}

func (h HandlerFuncs) OnLocation(loc Location) {
	if h.Location != nil {
		h.Location(loc)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

// Locator turns a polling Provider into current-position requests and
// distance-filtered watches.
type Locator struct {
	provider Provider
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	last    Location
	hasLast bool
}

// NewLocator wraps provider.
func NewLocator(provider Provider, logger zerolog.Logger) *Locator {
	return &Locator{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// CurrentPosition returns the cached fix if it is younger than
// opts.MaximumAge, otherwise it asks the provider.
func (l *Locator) CurrentPosition(ctx context.Context, opts PositionOptions) (Location, error) {
	if opts.MaximumAge > 0 {
		l.mu.Lock()
		cached, ok := l.last, l.hasLast
		l.mu.Unlock()
		if ok && l.now().Sub(cached.Timestamp) <= opts.MaximumAge {
			return cached, nil
		}
	}

	return l.fetch(ctx, opts.HighAccuracy, opts.Timeout)
}

func (l *Locator) fetch(ctx context.Context, highAccuracy bool, timeout time.Duration) (Location, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	loc, err := l.provider.GetLocation(ctx, highAccuracy)
	if err != nil {
		return Location{}, err
	}
	if !loc.Valid() {
		return Location{}, ErrInvalidFix
	}
	if loc.Timestamp.IsZero() {
		loc.Timestamp = l.now()
	}

	l.mu.Lock()
	l.last, l.hasLast = loc, true
	l.mu.Unlock()

	return loc, nil
}

// Watch polls the provider every opts.Interval until ctx is cancelled. The
// first fix is always delivered; later fixes only when they are at least
// opts.DistanceFilter meters from the last delivered one. Provider errors are
// reported to h and polling continues.
func (l *Locator) Watch(ctx context.Context, opts WatchOptions, h Handler) {
	if opts.Interval <= 0 {
		opts.Interval = DefaultWatchOptions.Interval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = opts.Interval
	}

	l.logger.Debug().
		Dur("interval", opts.Interval).
		Float64("distance_filter", opts.DistanceFilter).
		Bool("high_accuracy", opts.HighAccuracy).
		Msg("Location watch started")

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var delivered Location
	var hasDelivered bool
	if opts.Since != nil {
		delivered, hasDelivered = *opts.Since, true
	}

	poll := func() {
		loc, err := l.fetch(ctx, opts.HighAccuracy, timeout)
		if err != nil {
			if ctx.Err() == nil {
				h.OnError(err)
			}
			return
		}
		if hasDelivered && geo.Distance(delivered.Coordinate(), loc.Coordinate()) < opts.DistanceFilter {
			return
		}
		delivered, hasDelivered = loc, true
		h.OnLocation(loc)
	}

	poll()
	for {
		select {
		case <-ticker.C:
			poll()
		case <-ctx.Done():
			l.logger.Debug().Msg("Location watch stopped")
			return
		}
	}
}
