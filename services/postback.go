package services

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/xctd-glitch/trackng.app/internal/device"
	"github.com/xctd-glitch/trackng.app/models"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

const (
	postbackTimeout = 8 * time.Second
	maxInFlight     = 16
	maxBodyRecord   = 512
)

// PostbackService fires outbound conversion notifications to partner
// URLs. Dispatch is fire-and-forget with a bounded number of concurrent
// deliveries; a slow partner can never back up the redirect path.
type PostbackService struct {
	db     *gorm.DB
	client *http.Client
	sem    *semaphore.Weighted
	logger *zap.Logger

	// resolver is swappable for tests
	resolver func(ctx context.Context, host string) ([]net.IPAddr, error)
}

func NewPostbackService(db *gorm.DB, logger *zap.Logger) *PostbackService {
	return &PostbackService{
		db:       db,
		client:   &http.Client{Timeout: postbackTimeout},
		sem:      semaphore.NewWeighted(maxInFlight),
		logger:   logger,
		resolver: net.DefaultResolver.LookupIPAddr,
	}
}

// Dispatch delivers a postback in the background. When the in-flight
// budget is exhausted the postback is dropped and logged rather than
// queued; outbound notifications are best effort.
func (s *PostbackService) Dispatch(countryCode string, dev device.Type, payout float64, urlTemplate string) {
	if !s.sem.TryAcquire(1) {
		s.logger.Warn("postback dropped, dispatch budget exhausted",
			zap.String("country", countryCode))
		return
	}
	go func() {
		defer s.sem.Release(1)
		ctx, cancel := context.WithTimeout(context.Background(), postbackTimeout)
		defer cancel()
		s.Send(ctx, countryCode, dev, payout, urlTemplate)
	}()
}

// Send fills the template, validates the result and issues a single GET.
// The outcome is recorded but never surfaced as an error: a failed
// postback is a logging event, not a routing failure.
func (s *PostbackService) Send(ctx context.Context, countryCode string, dev device.Type, payout float64, urlTemplate string) bool {
	target := FillTemplate(urlTemplate, countryCode, dev, payout)

	// DNS may have changed since the template was saved, so the SSRF
	// check runs again at dispatch time.
	if err := s.ValidateURL(ctx, target); err != nil {
		s.logger.Warn("postback rejected", zap.String("country", countryCode), zap.Error(err))
		return false
	}

	entry := models.PostbackLog{
		Direction: models.PostbackOut,
		URL:       target,
		Country:   countryCode,
		Device:    string(dev),
		Payout:    payout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		s.record(entry)
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("postback delivery failed", zap.String("country", countryCode), zap.Error(err))
		s.record(entry)
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyRecord))
	entry.Status = resp.StatusCode
	entry.Body = string(body)
	entry.Success = resp.StatusCode >= 200 && resp.StatusCode <= 299
	s.record(entry)

	if !entry.Success {
		s.logger.Warn("postback returned non-2xx",
			zap.String("country", countryCode), zap.Int("status", resp.StatusCode))
	}
	return entry.Success
}

// RecordInbound stores a postback received from an affiliate network.
func (s *PostbackService) RecordInbound(clickID, countryCode string, payout float64, status int) error {
	return s.db.Create(&models.PostbackLog{
		Direction: models.PostbackIn,
		ClickID:   clickID,
		Country:   countryCode,
		Payout:    payout,
		Status:    status,
		Success:   true,
	}).Error
}

func (s *PostbackService) record(entry models.PostbackLog) {
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Warn("postback log write failed", zap.Error(err))
	}
}

// FillTemplate substitutes the {country}, {traffic_type} and {payout}
// placeholders. Payout is always formatted with two decimals.
func FillTemplate(urlTemplate, countryCode string, dev device.Type, payout float64) string {
	return strings.NewReplacer(
		"{country}", countryCode,
		"{traffic_type}", string(dev),
		"{payout}", fmt.Sprintf("%.2f", payout),
	).Replace(urlTemplate)
}

// ValidateURL enforces the delivery policy: well-formed, HTTPS, and no
// resolved address inside a blocked range. Run at configuration save
// time as well as before every dispatch.
func (s *PostbackService) ValidateURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("malformed postback url: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("postback url must use https, got %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("postback url has no host")
	}

	addrs, err := s.resolver(ctx, host)
	if err != nil {
		return fmt.Errorf("postback host did not resolve: %w", err)
	}
	for _, a := range addrs {
		addr, ok := netip.AddrFromSlice(a.IP)
		if !ok {
			return fmt.Errorf("postback host resolved to unparsable address")
		}
		if blockedAddr(addr.Unmap()) {
			return fmt.Errorf("postback host resolves to blocked range")
		}
	}
	return nil
}

// blockedAddr rejects destinations that would turn the dispatcher into
// an internal network probe: private, loopback, link-local (including
// the cloud metadata endpoint), IPv6 ULA, and unspecified.
func blockedAddr(addr netip.Addr) bool {
	if addr.IsPrivate() || addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	// IPv6 unique local fc00::/7
	if addr.Is6() && netip.MustParsePrefix("fc00::/7").Contains(addr) {
		return true
	}
	return false
}
