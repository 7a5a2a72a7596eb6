// Package engine implements the routing decision core: given a click's
// attributes it produces either Decision A (redirect to a configured
// offer URL) or Decision B (redirect to the internal fallback page), and
// drives counter updates plus conversion postbacks.
package engine

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/xctd-glitch/trackng.app/internal/country"
	"github.com/xctd-glitch/trackng.app/internal/device"
	"github.com/xctd-glitch/trackng.app/internal/mute"
	"github.com/xctd-glitch/trackng.app/internal/store"
	"go.uber.org/zap"
)

const (
	DecisionA = "A"
	DecisionB = "B"
)

// VpnProbe abstracts the external reputation lookup so tests can fake it.
type VpnProbe interface {
	IsVPN(ctx context.Context, ip string) bool
}

// Dispatcher fires outbound conversion postbacks, fire-and-forget.
type Dispatcher interface {
	Dispatch(countryCode string, dev device.Type, payout float64, urlTemplate string)
}

// Input carries one click's attributes into the engine. DeviceHint, when
// set, wins over UserAgent classification.
type Input struct {
	CountryCode string
	UserAgent   string
	DeviceHint  string
	IP          string
	ClickID     string
	LandingID   string
}

// Decision is the routing outcome for one click.
type Decision struct {
	Type    string
	Target  string
	Country string
	Device  device.Type
}

type Engine struct {
	store        store.ConfigStore
	probe        VpnProbe
	dispatcher   Dispatcher
	fallbackPath string
	logger       *zap.Logger
	now          func() time.Time
}

func New(st store.ConfigStore, probe VpnProbe, dispatcher Dispatcher, fallbackPath string, logger *zap.Logger) *Engine {
	return &Engine{
		store:        st,
		probe:        probe,
		dispatcher:   dispatcher,
		fallbackPath: fallbackPath,
		logger:       logger,
		now:          time.Now,
	}
}

// Decide computes the routing decision for one click. It never fails on
// input variation; anything odd degrades to Decision B. The only error
// it returns is a configuration read failure, which the HTTP layer
// turns into a 5xx.
func (e *Engine) Decide(ctx context.Context, in Input) (Decision, error) {
	// Roll counters before reading them, so a click landing right at
	// day rollover observes fresh stats.
	if err := e.store.ResetCountersIfNewDay(ctx); err != nil {
		return Decision{}, err
	}

	cfg, err := e.store.Get(ctx)
	if err != nil {
		return Decision{}, err
	}

	code := country.Normalize(in.CountryCode)

	dev := device.Classify(in.DeviceHint)
	if in.DeviceHint == "" {
		dev = device.Classify(in.UserAgent)
	}

	muted := mute.Muted(cfg.Enabled, e.now())
	candidates := validTargets(cfg.TargetURLs)

	if cfg.Enabled && !muted &&
		dev == device.WAP &&
		!e.probe.IsVPN(ctx, in.IP) &&
		country.Allowed(code, cfg.CountryFilterMode, cfg.CountryFilterList) &&
		len(candidates) > 0 {

		target := strings.TrimRight(pickTarget(candidates), "/")

		if err := e.store.IncrementDecisionA(ctx); err != nil {
			e.logger.Warn("decision A counter increment failed", zap.Error(err))
		}
		if cfg.PostbackEnabled && cfg.PostbackURLTemplate != "" {
			e.dispatcher.Dispatch(code, dev, cfg.DefaultPayout, cfg.PostbackURLTemplate)
		}
		return Decision{Type: DecisionA, Target: target, Country: code, Device: dev}, nil
	}

	// Decision B. Only count it when the system was actually on;
	// traffic seen while the gate is off stays out of the counters so
	// the stats reflect real decisions. Muted B outcomes do count, they
	// are the throttle working as intended.
	if cfg.Enabled {
		if err := e.store.IncrementDecisionB(ctx); err != nil {
			e.logger.Warn("decision B counter increment failed", zap.Error(err))
		}
	}

	return Decision{
		Type:    DecisionB,
		Target:  e.fallbackURL(in, code, dev),
		Country: code,
		Device:  dev,
	}, nil
}

// validTargets keeps only absolute http/https URLs from the configured
// list. The A branch requires a non-empty result, so a config full of
// garbage degrades to Decision B instead of redirecting nowhere.
func validTargets(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// pickTarget selects uniformly with crypto/rand. A predictable PRNG
// would let anyone who can observe the sequence game the traffic split.
func pickTarget(candidates []string) string {
	if len(candidates) == 1 {
		return candidates[0]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// the first candidate is still a valid destination.
		return candidates[0]
	}
	return candidates[n.Int64()]
}

func (e *Engine) fallbackURL(in Input, code string, dev device.Type) string {
	q := url.Values{}
	q.Set("click_id", strings.ToLower(in.ClickID))
	q.Set("country", strings.ToLower(code))
	q.Set("device", strings.ToLower(string(dev)))
	q.Set("ip", strings.ToLower(in.IP))
	q.Set("landing", strings.ToLower(in.LandingID))
	return e.fallbackPath + "?" + q.Encode()
}
