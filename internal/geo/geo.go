// Package geo resolves client IP addresses to a coarse "City, CC" location
// string using a local GeoLite2 database. Lookup failure is never fatal to
// the caller; the resolver falls back to "Unknown".
package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/sirupsen/logrus"

	customerrors "qrlink/internal/errors"
)

// LocationUnknown is the fallback location recorded when the lookup misses.
const LocationUnknown = "Unknown"

// Locator resolves an IP address to a display location.
type Locator interface {
	Locate(ip string) (string, error)
}

// GeoIPLocator is a Locator backed by a MaxMind GeoLite2 City database.
type GeoIPLocator struct {
	reader *geoip2.Reader
}

// Open loads the GeoLite2 database at path.
func Open(path string) (*GeoIPLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoLite2 database at %s: %w", path, err)
	}
	logrus.Infof("GeoLite2 database loaded from %s", path)
	return &GeoIPLocator{reader: reader}, nil
}

// Close releases the underlying database reader.
func (l *GeoIPLocator) Close() error {
	return l.reader.Close()
}

// Locate returns "City, CC" for the given IP, or an external service error
// when the address cannot be parsed or the database has no entry for it.
func (l *GeoIPLocator) Locate(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", customerrors.External("geoip", fmt.Errorf("unparseable IP address %q", ip))
	}

	record, err := l.reader.City(parsed)
	if err != nil {
		return "", customerrors.External("geoip", err)
	}

	city := record.City.Names["en"]
	country := record.Country.IsoCode
	if city == "" && country == "" {
		return "", customerrors.External("geoip", fmt.Errorf("no location data for %s", ip))
	}
	if city == "" {
		return country, nil
	}
	return fmt.Sprintf("%s, %s", city, country), nil
}

// NoopLocator is used when no GeoLite2 database is configured. Every lookup
// misses, so every visit is recorded with the unknown location.
type NoopLocator struct{}

// Locate always reports a miss.
func (NoopLocator) Locate(ip string) (string, error) {
	return "", customerrors.External("geoip", fmt.Errorf("geo lookup disabled"))
}
