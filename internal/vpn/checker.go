// Package vpn queries an external IP reputation service to flag VPN and
// proxy traffic. Lookups fail closed: if the service cannot answer, the
// IP is treated as VPN so that the trusted routing path never opens on
// an outage.
package vpn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	lookupTimeout = 2 * time.Second
	maxBody       = 64
)

// Checker performs single-IP reputation lookups against a service that
// answers GET <base>/<ip> with a plaintext "Y" or "N".
type Checker struct {
	baseURL string
	salt    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewChecker(baseURL, hashSalt string, logger *zap.Logger) *Checker {
	return &Checker{
		baseURL: strings.TrimRight(baseURL, "/"),
		salt:    hashSalt,
		client:  &http.Client{Timeout: lookupTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "vpn-reputation",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		logger: logger,
	}
}

// IsVPN reports whether the IP should be treated as VPN traffic.
// Malformed and internal addresses skip the lookup entirely and return
// false: there is no VPN concept for traffic that never crossed the
// public internet. Every lookup failure returns true.
func (c *Checker) IsVPN(ctx context.Context, ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	if isInternal(addr) {
		return false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.lookup(ctx, addr.String())
	})
	if err != nil {
		c.logger.Warn("vpn lookup failed, treating as vpn",
			zap.String("ip_hash", c.hashIP(addr.String())),
			zap.Error(err))
		return true
	}
	return result.(bool)
}

func (c *Checker) lookup(ctx context.Context, ip string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("reputation service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return false, err
	}
	answer := strings.TrimSpace(string(body))
	if answer == "" {
		return false, fmt.Errorf("reputation service returned empty body")
	}
	return answer == "Y", nil
}

// hashIP produces a short salted digest so failures are correlatable in
// logs without storing the raw address.
func (c *Checker) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(c.salt + ip))
	return hex.EncodeToString(sum[:])[:12]
}

func isInternal(addr netip.Addr) bool {
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		isReserved(addr)
}

// isReserved covers ranges netip has no predicate for: CGNAT,
// benchmarking, and class E. Documentation nets (TEST-NET-*) are not
// listed; they are routable-shaped and still get a real lookup.
func isReserved(addr netip.Addr) bool {
	if !addr.Is4() {
		return false
	}
	for _, cidr := range []string{
		"100.64.0.0/10", // CGNAT
		"192.0.0.0/24",  // IETF protocol assignments
		"198.18.0.0/15", // benchmarking
		"240.0.0.0/4",   // class E
	} {
		prefix := netip.MustParsePrefix(cidr)
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
