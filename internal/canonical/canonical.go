// Package canonical builds the SEO canonical URL of a storefront page.
package canonical

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"regional-storefront-go/internal/region"
	"regional-storefront-go/pkg/model"
)

// PageType selects the path layout of a canonical URL.
type PageType string

const (
	PageHome     PageType = "home"
	PageCategory PageType = "category"
	PageProduct  PageType = "product"
	PagePage     PageType = "page"
)

var (
	// ErrMissingSlug means a caller asked for a page type without the slug it needs.
	ErrMissingSlug = errors.New("canonical: missing required slug")
	// ErrUnknownPageType means the page type is not one of the PageType constants.
	ErrUnknownPageType = errors.New("canonical: unknown page type")
)

// Options are the per-call inputs of Build.
type Options struct {
	CategorySlug string
	ProductSlug  string
	PageSlug     string

	// CustomOverride is a per-record canonical. An absolute http(s) URL is
	// returned as is; anything else is used as the path.
	CustomOverride string
	// Relative returns only the path instead of an absolute URL.
	Relative bool
	// ForceMainDomain puts the URL on the base domain whatever region served it.
	ForceMainDomain bool
}

// Builder composes canonical URLs for one storefront deployment.
type Builder struct {
	baseDomain       string
	alwaysMainDomain bool
	registry         *region.Registry
}

// NewBuilder creates a builder. alwaysMainDomain is the site-wide policy
// equivalent to setting ForceMainDomain on every call.
func NewBuilder(baseDomain string, alwaysMainDomain bool, registry *region.Registry) *Builder {
	return &Builder{
		baseDomain:       strings.ToLower(strings.TrimSuffix(strings.TrimSpace(baseDomain), ".")),
		alwaysMainDomain: alwaysMainDomain,
		registry:         registry,
	}
}

// Build returns the canonical URL for a page served to regionCode.
func (b *Builder) Build(pageType PageType, regionCode string, opts Options) (string, error) {
	override := strings.TrimSpace(opts.CustomOverride)
	if isAbsolute(override) {
		return override, nil
	}

	var path string
	if override != "" {
		path = normalizePath(override)
	} else {
		p, err := pagePath(pageType, opts)
		if err != nil {
			return "", err
		}
		path = p
	}

	if opts.Relative {
		return path, nil
	}

	host := b.Host(regionCode, opts.ForceMainDomain)
	return b.scheme() + "://" + host + path, nil
}

// Host returns the domain canonical URLs of regionCode live on.
func (b *Builder) Host(regionCode string, forceMainDomain bool) string {
	if forceMainDomain || b.alwaysMainDomain {
		regionCode = model.DefaultRegionCode
	}
	if sub, ok := b.registry.Subdomain(regionCode); ok {
		return sub + "." + b.baseDomain
	}
	return b.baseDomain
}

func (b *Builder) scheme() string {
	if isLocalHost(b.baseDomain) {
		return "http"
	}
	return "https"
}

func pagePath(pageType PageType, opts Options) (string, error) {
	switch pageType {
	case PageHome:
		return "/", nil
	case PageCategory:
		category, err := segment("category", opts.CategorySlug)
		if err != nil {
			return "", err
		}
		return "/" + category, nil
	case PageProduct:
		category, err := segment("category", opts.CategorySlug)
		if err != nil {
			return "", err
		}
		product, err := segment("product", opts.ProductSlug)
		if err != nil {
			return "", err
		}
		return "/" + category + "/" + product, nil
	case PagePage:
		page, err := segment("page", opts.PageSlug)
		if err != nil {
			return "", err
		}
		return "/pages/" + page, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPageType, pageType)
	}
}

func segment(name, slug string) (string, error) {
	slug = strings.Trim(strings.TrimSpace(slug), "/")
	if slug == "" {
		return "", fmt.Errorf("%w: %s slug", ErrMissingSlug, name)
	}
	return escapeSegment(slug), nil
}

// escapeSegment percent-encodes ASCII characters that are not allowed in a
// path segment and keeps non-ASCII letters as written, so a Cyrillic slug
// stays in the readable form the storefront routes and links use.
func escapeSegment(slug string) string {
	var b strings.Builder
	for _, r := range slug {
		if r >= 0x80 {
			b.WriteRune(r)
			continue
		}
		b.WriteString(url.PathEscape(string(r)))
	}
	return b.String()
}

// normalizePath guarantees exactly one leading slash.
func normalizePath(p string) string {
	return "/" + strings.TrimLeft(p, "/")
}

func isAbsolute(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isLocalHost(domain string) bool {
	host := domain
	if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
