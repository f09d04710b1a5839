package region

import (
	"sort"
	"strings"

	"regional-storefront-go/pkg/model"
)

// KnownSubdomains is the fixed set of regional subdomains. Each subdomain
// label doubles as the region code.
var KnownSubdomains = []string{
	"yalta",
	"alushta",
	"sevastopol",
	"simferopol",
	"evpatoria",
	"feodosia",
	"kerch",
}

// Registry maps subdomain labels to region codes and back.
type Registry struct {
	codes map[string]struct{}
}

// NewRegistry builds a registry from region codes. Codes are lowercased;
// the default code is never registered since it has no subdomain.
func NewRegistry(codes ...string) *Registry {
	r := &Registry{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || code == model.DefaultRegionCode {
			continue
		}
		r.codes[code] = struct{}{}
	}
	return r
}

// DefaultRegistry returns a registry of KnownSubdomains.
func DefaultRegistry() *Registry {
	return NewRegistry(KnownSubdomains...)
}

// Resolve classifies a Host header value. Unknown, missing or malformed
// hosts resolve to the default region.
func (r *Registry) Resolve(host string) string {
	label := subdomainLabel(host)
	if _, ok := r.codes[label]; ok {
		return label
	}
	return model.DefaultRegionCode
}

// Subdomain returns the subdomain label serving code. The default region
// and unregistered codes have none.
func (r *Registry) Subdomain(code string) (string, bool) {
	code = strings.ToLower(code)
	if _, ok := r.codes[code]; !ok {
		return "", false
	}
	return code, true
}

// IsValidCode reports whether code is the default region or a registered one.
func (r *Registry) IsValidCode(code string) bool {
	if code == model.DefaultRegionCode {
		return true
	}
	_, ok := r.codes[code]
	return ok
}

// Codes lists registered codes in lexical order.
func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.codes))
	for code := range r.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// subdomainLabel extracts the leftmost label of a host, skipping a leading
// "www". It returns "" when the host has no subdomain part.
func subdomainLabel(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || strings.HasPrefix(host, "[") {
		return ""
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")

	labels := strings.Split(host, ".")
	if len(labels) > 2 && labels[0] == "www" {
		labels = labels[1:]
	}
	if len(labels) < 2 {
		return ""
	}
	return labels[0]
}
