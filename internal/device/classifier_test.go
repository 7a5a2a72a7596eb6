package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOverrides(t *testing.T) {
	assert.Equal(t, WAP, Classify("wap"))
	assert.Equal(t, WAP, Classify("Mobile"))
	assert.Equal(t, Web, Classify("web"))
	assert.Equal(t, Web, Classify("DESKTOP"))
	assert.Equal(t, Tablet, Classify("tablet"))
}

func TestClassifyEmpty(t *testing.T) {
	assert.Equal(t, Web, Classify(""))
	assert.Equal(t, Web, Classify("   "))
}

func TestClassifyUserAgents(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Type
	}{
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15", WAP},
		{"android phone", "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Mobile Safari/537.36", WAP},
		{"opera mini", "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80 (S60; SymbOS)", WAP},
		{"windows phone", "Mozilla/5.0 (Windows Phone 10.0; Android 6.0.1)", WAP},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15", Tablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 12; SM-X906C) Tablet Safari", Tablet},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", Web},
		{"macos safari", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", Web},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", Bot},
		{"generic crawler", "SomeCompany-Crawler/1.0", Bot},
		{"facebook prefetch", "facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", Bot},
		{"whatsapp prefetch", "WhatsApp/2.23.20 A", Bot},
		{"telegram prefetch", "TelegramBot (like TwitterBot)", Bot},
		{"curl", "curl/8.4.0", Bot},
		{"unknown gibberish", "definitely-not-a-real-agent/0.1", Web},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ua))
		})
	}
}

func TestClassifyBotBeatsMobile(t *testing.T) {
	// A crawler announcing a mobile UA is still a bot
	assert.Equal(t, Bot, Classify("Mozilla/5.0 (iPhone) Googlebot-Mobile/2.1"))
}
