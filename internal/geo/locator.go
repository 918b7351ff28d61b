// Package geo derives a coarse location from a client IP.
package geo

import (
	"fmt"
	"net"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/oschwald/geoip2-golang"
)

// Locator never fails: an unknown or private address yields an empty Location.
type Locator interface {
	Lookup(ip string) domain.Location
}

type Noop struct{}

func (Noop) Lookup(string) domain.Location {
	return domain.Location{}
}

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Close() error
}

// MaxMind reads a GeoLite2/GeoIP2 City database.
type MaxMind struct {
	db cityReader
}

func OpenMaxMind(path string) (*MaxMind, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database %s: %w", path, err)
	}
	return &MaxMind{db: db}, nil
}

func (m *MaxMind) Lookup(ip string) domain.Location {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return domain.Location{}
	}

	record, err := m.db.City(parsed)
	if err != nil || record == nil {
		return domain.Location{}
	}

	return domain.Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
}

func (m *MaxMind) Close() error {
	return m.db.Close()
}
