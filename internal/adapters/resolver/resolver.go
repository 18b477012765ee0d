// Package resolver looks up the authoritative nameservers of a zone through
// recursive resolvers.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/time/rate"
)

// DefaultResolvConf is read when no upstream is configured.
const DefaultResolvConf = "/etc/resolv.conf"

// Options configures an NSResolver.
type Options struct {
	// Servers are host:port pairs. Empty means the nameservers of ResolvConf.
	Servers    []string
	ResolvConf string
	// Rate caps lookups per second across all callers; zero disables the cap.
	Rate    float64
	Timeout time.Duration
}

// NSResolver implements ports.NSResolver with miekg/dns. Servers are tried
// in order until one answers.
type NSResolver struct {
	servers []string
	udp     *dns.Client
	tcp     *dns.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func New(opts Options, logger *slog.Logger) (*NSResolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	servers := append([]string(nil), opts.Servers...)
	if len(servers) == 0 {
		path := opts.ResolvConf
		if path == "" {
			path = DefaultResolvConf
		}
		cfg, err := dns.ClientConfigFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for _, s := range cfg.Servers {
			servers = append(servers, net.JoinHostPort(s, cfg.Port))
		}
	}
	for i, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			servers[i] = net.JoinHostPort(s, "53")
		}
	}
	if len(servers) == 0 {
		return nil, errors.New("no upstream resolvers configured")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
		burst = int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
	}
	return &NSResolver{
		servers: servers,
		udp:     &dns.Client{Net: "udp", Timeout: timeout},
		tcp:     &dns.Client{Net: "tcp", Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

// Servers returns the upstreams in the order they are tried.
func (r *NSResolver) Servers() []string {
	return append([]string(nil), r.servers...)
}

// LookupNS returns the lowercase NS host names of name, with trailing dots.
// A nonexistent name has no nameservers and is not an error.
func (r *NSResolver) LookupNS(ctx context.Context, name string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(strings.ToLower(name)), dns.TypeNS)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		resp, err := r.exchange(ctx, msg, server)
		if err != nil {
			lastErr = err
			r.logger.Debug("ns lookup failed", "name", name, "server", server, "error", err)
			continue
		}
		switch resp.Rcode {
		case dns.RcodeSuccess:
			return nsHosts(resp, msg.Question[0].Name), nil
		case dns.RcodeNameError:
			return nil, nil
		}
		lastErr = fmt.Errorf("%s answered %s", server, dns.RcodeToString[resp.Rcode])
	}
	return nil, fmt.Errorf("lookup NS %s: %w", name, lastErr)
}

func (r *NSResolver) exchange(ctx context.Context, msg *dns.Msg, server string) (*dns.Msg, error) {
	resp, _, err := r.udp.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = r.tcp.ExchangeContext(ctx, msg, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// nsHosts collects NS targets for owner from the answer section, falling back
// to the authority section of a referral.
func nsHosts(resp *dns.Msg, owner string) []string {
	collect := func(rrs []dns.RR) []string {
		var out []string
		for _, rr := range rrs {
			if ns, ok := rr.(*dns.NS); ok && strings.EqualFold(ns.Hdr.Name, owner) {
				out = append(out, strings.ToLower(ns.Ns))
			}
		}
		return out
	}
	if hosts := collect(resp.Answer); len(hosts) > 0 {
		return hosts
	}
	return collect(resp.Ns)
}
