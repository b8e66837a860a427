// Package seo defines the collaborator that supplies SEO and traffic
// metrics for a domain.
package seo

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/visibility-engine/pkg/types"
)

// Provider returns metrics for a domain.
type Provider interface {
	Metrics(ctx context.Context, domain string) (types.DomainMetrics, error)
}

// StubSource is the Source reported by StubProvider.
const StubSource = "stub"

// StubProvider returns zero metrics tagged with StubSource. It stands in
// until a real analytics provider is wired.
type StubProvider struct{}

// Metrics normalizes domain and returns zero-valued figures for it.
func (StubProvider) Metrics(ctx context.Context, domain string) (types.DomainMetrics, error) {
	if err := ctx.Err(); err != nil {
		return types.DomainMetrics{}, err
	}
	d, err := NormalizeDomain(domain)
	if err != nil {
		return types.DomainMetrics{}, err
	}
	return types.DomainMetrics{Domain: d, Source: StubSource}, nil
}

// NormalizeDomain reduces a URL or host to its lower-case host without a
// leading "www.", port, or path.
func NormalizeDomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", eris.New("empty domain")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", eris.Wrapf(err, "parsing domain %q", raw)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" || !strings.Contains(host, ".") {
		return "", eris.Errorf("invalid domain %q", raw)
	}
	return host, nil
}
