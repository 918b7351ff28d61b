package geo

import (
	"errors"
	"net"
	"testing"

	"github.com/ammu0113/url-shortener/internal/domain"
	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
)

type fakeReader struct {
	cities map[string]*geoip2.City
	calls  int
}

func (f *fakeReader) City(ip net.IP) (*geoip2.City, error) {
	f.calls++
	if city, ok := f.cities[ip.String()]; ok {
		return city, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeReader) Close() error { return nil }

func TestMaxMind_Lookup(t *testing.T) {
	amsterdam := &geoip2.City{}
	amsterdam.Country.IsoCode = "NL"
	amsterdam.City.Names = map[string]string{"en": "Amsterdam"}

	reader := &fakeReader{cities: map[string]*geoip2.City{"81.2.69.142": amsterdam}}
	locator := &MaxMind{db: reader}

	assert.Equal(t, domain.Location{Country: "NL", City: "Amsterdam"}, locator.Lookup("81.2.69.142"))
	assert.Equal(t, domain.Location{}, locator.Lookup("8.8.4.4"))
	assert.Equal(t, 2, reader.calls)
}

func TestMaxMind_SkipsUnroutableAddresses(t *testing.T) {
	reader := &fakeReader{}
	locator := &MaxMind{db: reader}

	for _, ip := range []string{"", "garbage", "127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "0.0.0.0"} {
		assert.True(t, locator.Lookup(ip).IsZero(), ip)
	}
	assert.Zero(t, reader.calls)
}

func TestNoop(t *testing.T) {
	assert.True(t, Noop{}.Lookup("81.2.69.142").IsZero())
}
