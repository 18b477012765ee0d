// Package master provides functionality for parsing DNS master zone files (RFC 1035).
package master

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/miekg/dns"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

// MasterParser converts a master zone file into records of one zone.
type MasterParser struct {
	Origin     string
	DefaultTTL int
}

// NewMasterParser creates a parser for the zone origin.
func NewMasterParser(origin string) *MasterParser {
	return &MasterParser{
		Origin:     domain.NormalizeDomainName(origin),
		DefaultTTL: domain.DefaultTTL,
	}
}

// ZoneData holds the parsed records, named relative to the origin the way
// API callers name them, and a description of every entry left out.
type ZoneData struct {
	Origin  string
	Records []domain.Record
	Skipped []string
}

// Parse reads a master zone file from r.
func (p *MasterParser) Parse(r io.Reader) (*ZoneData, error) {
	zp := dns.NewZoneParser(r, dns.Fqdn(p.Origin), "")
	if p.DefaultTTL > 0 {
		zp.SetDefaultTTL(uint32(p.DefaultTTL))
	}
	data := &ZoneData{Origin: p.Origin}

	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		hdr := rr.Header()
		owner := domain.NormalizeDomainName(hdr.Name)
		name, inZone := p.relative(owner)
		if !inZone {
			data.Skipped = append(data.Skipped, fmt.Sprintf("%s %s: outside of zone %s", owner, dns.TypeToString[hdr.Rrtype], p.Origin))
			continue
		}
		typ, content, supported := convert(rr)
		if !supported {
			data.Skipped = append(data.Skipped, fmt.Sprintf("%s %s: unsupported type", owner, dns.TypeToString[hdr.Rrtype]))
			continue
		}
		data.Records = append(data.Records, domain.Record{
			Name:    name,
			Type:    typ,
			Content: content,
			TTL:     int(hdr.Ttl),
		})
	}
	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("parse zone: %w", err)
	}
	return data, nil
}

func (p *MasterParser) relative(owner string) (string, bool) {
	switch {
	case owner == p.Origin:
		return domain.ApexName, true
	case strings.HasSuffix(owner, "."+p.Origin):
		return strings.TrimSuffix(owner, "."+p.Origin), true
	}
	return "", false
}

func convert(rr dns.RR) (domain.RecordType, string, bool) {
	switch v := rr.(type) {
	case *dns.A:
		return domain.TypeA, v.A.String(), true
	case *dns.AAAA:
		return domain.TypeAAAA, v.AAAA.String(), true
	case *dns.CNAME:
		return domain.TypeCNAME, strings.ToLower(v.Target), true
	case *dns.MX:
		return domain.TypeMX, fmt.Sprintf("%d %s", v.Preference, strings.ToLower(v.Mx)), true
	case *dns.NS:
		return domain.TypeNS, strings.ToLower(v.Ns), true
	case *dns.PTR:
		return domain.TypePTR, strings.ToLower(v.Ptr), true
	case *dns.SRV:
		return domain.TypeSRV, fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, strings.ToLower(v.Target)), true
	case *dns.TXT:
		return domain.TypeTXT, strings.Join(v.Txt, ""), true
	case *dns.SOA:
		return domain.TypeSOA, fmt.Sprintf("%s %s %d %d %d %d %d",
			strings.ToLower(v.Ns), strings.ToLower(v.Mbox), v.Serial, v.Refresh, v.Retry, v.Expire, v.Minttl), true
	}
	return "", "", false
}

// CompareNamesCanonically orders owner names per RFC 4034 Section 6.1.
func CompareNamesCanonically(a, b string) int {
	a = strings.TrimSuffix(strings.ToLower(a), ".")
	b = strings.TrimSuffix(strings.ToLower(b), ".")

	if a == b {
		return 0
	}
	if a == "" || a == domain.ApexName {
		return -1
	}
	if b == "" || b == domain.ApexName {
		return 1
	}

	aLabels := strings.Split(a, ".")
	bLabels := strings.Split(b, ".")

	i := len(aLabels) - 1
	j := len(bLabels) - 1

	for i >= 0 && j >= 0 {
		if aLabels[i] < bLabels[j] {
			return -1
		}
		if aLabels[i] > bLabels[j] {
			return 1
		}
		i--
		j--
	}

	if len(aLabels) < len(bLabels) {
		return -1
	}
	if len(aLabels) > len(bLabels) {
		return 1
	}
	return 0
}

// SortRecordsCanonically sorts records by owner name, then type.
func SortRecordsCanonically(records []domain.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		cmp := CompareNamesCanonically(records[i].Name, records[j].Name)
		if cmp == 0 {
			return records[i].Type < records[j].Type
		}
		return cmp < 0
	})
}
