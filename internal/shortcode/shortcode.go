// Package shortcode expands {{token}} placeholders in stored content with
// fields of the resolved region.
//
// The grammar is fixed: "{{", optional spaces, a token name of letters and
// underscores, optional spaces, "}}". Token names match case-insensitively.
// Unknown tokens, and every token when no region is available, are left in
// the output exactly as written. Expansion is a single pass; values inserted
// into the output are never scanned again.
package shortcode

import (
	"regexp"
	"sort"
	"strings"

	"regional-storefront-go/pkg/model"
)

// Context carries what a template may reference.
type Context struct {
	Region *model.Region
}

type accessor func(r *model.Region) string

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_]+)\s*\}\}`)

var tokens = map[string]accessor{
	"city":                      func(r *model.Region) string { return r.Name },
	"region_name":               func(r *model.Region) string { return r.Name },
	"region_code":               func(r *model.Region) string { return r.Code },
	"phone":                     func(r *model.Region) string { return r.Phone },
	"phone_formatted":           phoneFormatted,
	"phone_link":                phoneLink,
	"email":                     func(r *model.Region) string { return r.Email },
	"address":                   func(r *model.Region) string { return r.Address },
	"address_description":       func(r *model.Region) string { return deref(r.AddressDescription) },
	"working_hours":             func(r *model.Region) string { return r.WorkingHours },
	"working_hours_description": func(r *model.Region) string { return deref(r.WorkingHoursDescription) },
	"office_name":               func(r *model.Region) string { return deref(r.OfficeName) },
	"map":                       func(r *model.Region) string { return deref(r.MapEmbed) },
}

// Expand replaces every recognized token in template with the matching
// region field.
func Expand(template string, ctx Context) string {
	if ctx.Region == nil || !strings.Contains(template, "{{") {
		return template
	}

	region := ctx.Region
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.ToLower(tokenPattern.FindStringSubmatch(match)[1])
		get, ok := tokens[name]
		if !ok {
			return match
		}
		return get(region)
	})
}

// ExpandPtr expands *template, returning "" for nil.
func ExpandPtr(template *string, ctx Context) string {
	if template == nil {
		return ""
	}
	return Expand(*template, ctx)
}

// Tokens lists the recognized token names in lexical order.
func Tokens() []string {
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unknown returns the distinct token names in template that Expand would
// leave untouched, in order of first appearance.
func Unknown(template string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		name := strings.ToLower(m[1])
		if _, ok := tokens[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func phoneFormatted(r *model.Region) string {
	if r.PhoneFormatted != "" {
		return r.PhoneFormatted
	}
	return r.Phone
}

// phoneLink renders the phone as a tel: URI target, digits and a leading plus only.
func phoneLink(r *model.Region) string {
	var b strings.Builder
	for _, ch := range r.Phone {
		if (ch >= '0' && ch <= '9') || (ch == '+' && b.Len() == 0) {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
