package validator

import (
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
)

// URLValidator accepts URLs whose host is an allowlisted domain, a subdomain of one,
// or a known short-link host. It does not check that the URL names a video; the
// extractor is the authoritative judge of that.
type URLValidator struct {
	domains    []string
	shortHosts map[string]struct{}
}

func NewURLValidator(domains, shortLinkHosts []string) *URLValidator {
	v := &URLValidator{
		shortHosts: make(map[string]struct{}, len(shortLinkHosts)),
	}
	for _, d := range domains {
		if d = normalizeHost(d); d != "" {
			v.domains = append(v.domains, d)
		}
	}
	for _, h := range shortLinkHosts {
		if h = normalizeHost(h); h != "" {
			v.shortHosts[h] = struct{}{}
		}
	}
	return v
}

func (v *URLValidator) IsAcceptable(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || !govalidator.IsRequestURL(raw) {
		return false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return false
	}

	if _, ok := v.shortHosts[host]; ok {
		return true
	}
	for _, domain := range v.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}
