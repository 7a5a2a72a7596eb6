// Package geo resolves a client IP to a country code from a local
// MaxMind database. Optional: a nil *Resolver is valid and resolves
// nothing.
package geo

import (
	"log"
	"net"

	"github.com/oschwald/maxminddb-golang"
)

type Resolver struct {
	reader *maxminddb.Reader
}

// Open loads a GeoLite2/GeoIP2 country database. An empty path disables
// lookups without error.
func Open(path string) (*Resolver, error) {
	if path == "" {
		log.Println("GeoIP database not configured, country lookup by IP disabled")
		return nil, nil
	}
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	log.Printf("GeoIP database loaded from %s", path)
	return &Resolver{reader: reader}, nil
}

// Country returns the ISO country code for an IP, or "" when the
// resolver is disabled or the IP is unknown.
func (r *Resolver) Country(ip string) string {
	if r == nil || r.reader == nil {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
	}
	if err := r.reader.Lookup(parsed, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
