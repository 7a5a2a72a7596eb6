// Package device maps user-agent strings to coarse device categories.
package device

import "strings"

type Type string

const (
	WAP    Type = "WAP"
	Tablet Type = "TABLET"
	Web    Type = "WEB"
	Bot    Type = "BOT"
)

// Bot signatures checked first: crawlers and the link prefetchers that
// messaging apps run when a URL is pasted into a chat.
var botSignatures = []string{
	"bot", "crawl", "spider", "slurp",
	"facebookexternalhit", "whatsapp", "telegrambot", "skypeuripreview",
	"discordbot", "twitterbot", "linkedinbot", "pinterest",
	"googlebot", "bingbot", "yandex", "baiduspider", "duckduckbot",
	"headless", "phantomjs", "python-requests", "curl", "wget",
}

var tabletSignatures = []string{"tablet", "ipad"}

var mobileSignatures = []string{
	"mobile", "android", "iphone", "ipod", "blackberry",
	"iemobile", "opera mini", "windows phone",
}

// Classify maps a user-agent string to a device type. Callers that
// already know the classification can pass one of the short override
// tokens ("wap", "mobile", "web", "desktop", "tablet") instead of a raw
// user agent. Total function: never fails, unknown input is WEB.
func Classify(userAgent string) Type {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return Web
	}

	switch ua {
	case "wap", "mobile":
		return WAP
	case "web", "desktop":
		return Web
	case "tablet":
		return Tablet
	}

	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return Bot
		}
	}
	for _, sig := range tabletSignatures {
		if strings.Contains(ua, sig) {
			return Tablet
		}
	}
	for _, sig := range mobileSignatures {
		if strings.Contains(ua, sig) {
			return WAP
		}
	}
	return Web
}
