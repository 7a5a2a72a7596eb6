package services

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xctd-glitch/trackng.app/internal/device"
	"go.uber.org/zap"
)

func TestFillTemplate(t *testing.T) {
	got := FillTemplate(
		"https://x.example/pb?c={country}&t={traffic_type}&p={payout}",
		"US", device.WAP, 1.5,
	)
	assert.Equal(t, "https://x.example/pb?c=US&t=WAP&p=1.50", got)
}

func TestFillTemplatePayoutFormatting(t *testing.T) {
	assert.Equal(t, "p=0.00", FillTemplate("p={payout}", "US", device.WAP, 0))
	assert.Equal(t, "p=2.00", FillTemplate("p={payout}", "US", device.WAP, 2))
	assert.Equal(t, "p=0.33", FillTemplate("p={payout}", "US", device.WAP, 0.333))
}

func TestFillTemplateNoPlaceholders(t *testing.T) {
	url := "https://x.example/pb?fixed=1"
	assert.Equal(t, url, FillTemplate(url, "DE", device.Web, 9.99))
}

func stubResolver(ips ...string) func(ctx context.Context, host string) ([]net.IPAddr, error) {
	return func(ctx context.Context, host string) ([]net.IPAddr, error) {
		var out []net.IPAddr
		for _, ip := range ips {
			out = append(out, net.IPAddr{IP: net.ParseIP(ip)})
		}
		return out, nil
	}
}

func newTestService(resolver func(ctx context.Context, host string) ([]net.IPAddr, error)) *PostbackService {
	s := NewPostbackService(nil, zap.NewNop())
	s.resolver = resolver
	return s
}

func TestValidateURLAcceptsPublicHTTPS(t *testing.T) {
	s := newTestService(stubResolver("93.184.216.34"))
	assert.NoError(t, s.ValidateURL(context.Background(), "https://x.example/pb?c=US"))
}

func TestValidateURLRejectsHTTP(t *testing.T) {
	s := newTestService(stubResolver("93.184.216.34"))
	assert.Error(t, s.ValidateURL(context.Background(), "http://x.example/pb"))
}

func TestValidateURLRejectsMalformed(t *testing.T) {
	s := newTestService(stubResolver("93.184.216.34"))
	assert.Error(t, s.ValidateURL(context.Background(), "https://"))
	assert.Error(t, s.ValidateURL(context.Background(), "://bad"))
}

func TestValidateURLRejectsBlockedRanges(t *testing.T) {
	blocked := []string{
		"127.0.0.1",       // loopback
		"10.1.2.3",        // private
		"192.168.0.10",    // private
		"172.16.5.5",      // private
		"169.254.169.254", // cloud metadata
		"::1",             // IPv6 loopback
		"fe80::1",         // IPv6 link-local
		"fd00::1234",      // IPv6 ULA
		"0.0.0.0",         // unspecified
	}
	for _, ip := range blocked {
		s := newTestService(stubResolver(ip))
		assert.Error(t, s.ValidateURL(context.Background(), "https://x.example/pb"), "ip %s", ip)
	}
}

func TestValidateURLRejectsWhenAnyAddressBlocked(t *testing.T) {
	// DNS answers with one public and one internal address: still no
	s := newTestService(stubResolver("93.184.216.34", "10.0.0.5"))
	assert.Error(t, s.ValidateURL(context.Background(), "https://x.example/pb"))
}

func TestValidateURLRejectsUnresolvable(t *testing.T) {
	s := newTestService(func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return nil, &net.DNSError{Err: "no such host", Name: host}
	})
	assert.Error(t, s.ValidateURL(context.Background(), "https://nope.invalid/pb"))
}
