package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_ResolveKnownSubdomains(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		host string
		want string
	}{
		{"yalta.example.com", "yalta"},
		{"YALTA.Example.COM", "yalta"},
		{"Yalta.example.com:8443", "yalta"},
		{"www.yalta.example.com", "yalta"},
		{"kerch.example.com.", "kerch"},
		{"yalta.localhost:3000", "yalta"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(tt.host), "host %q", tt.host)
	}
}

func TestRegistry_ResolveDegradesToDefault(t *testing.T) {
	r := DefaultRegistry()

	hosts := []string{
		"",
		"   ",
		"example.com",
		"www.example.com",
		"moscow.example.com",
		"localhost",
		"localhost:8080",
		"127.0.0.1:8080",
		"[::1]:8080",
		"yalta",
		":::",
		"..",
	}
	for _, host := range hosts {
		assert.Equal(t, "default", r.Resolve(host), "host %q", host)
	}
}

func TestRegistry_EveryKnownSubdomainResolves(t *testing.T) {
	r := DefaultRegistry()
	for _, code := range KnownSubdomains {
		assert.Equal(t, code, r.Resolve(code+".example.com"))
	}
}

func TestRegistry_Subdomain(t *testing.T) {
	r := NewRegistry("Yalta", "default", "")

	sub, ok := r.Subdomain("yalta")
	assert.True(t, ok)
	assert.Equal(t, "yalta", sub)

	_, ok = r.Subdomain("default")
	assert.False(t, ok)

	assert.Equal(t, []string{"yalta"}, r.Codes())
	assert.True(t, r.IsValidCode("default"))
	assert.True(t, r.IsValidCode("yalta"))
	assert.False(t, r.IsValidCode("kerch"))
}
