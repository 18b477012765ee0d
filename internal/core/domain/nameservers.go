package domain

import "strings"

// NameserverSet is the operator's expected nameserver host names, lowercase
// and without trailing dots.
type NameserverSet []string

// NewNameserverSet builds a set from a single name, a comma separated list
// or several of either. Entries are trimmed; empties and duplicates dropped.
func NewNameserverSet(names ...string) NameserverSet {
	seen := make(map[string]struct{})
	var set NameserverSet
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			host := normalizeHost(part)
			if host == "" {
				continue
			}
			if _, dup := seen[host]; dup {
				continue
			}
			seen[host] = struct{}{}
			set = append(set, host)
		}
	}
	return set
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}

// Intersects reports whether any resolved host belongs to the set.
func (s NameserverSet) Intersects(resolved []string) bool {
	for _, r := range resolved {
		host := normalizeHost(r)
		for _, expected := range s {
			if host == expected {
				return true
			}
		}
	}
	return false
}

// SeedRecords returns the apex NS records a new zone starts with.
func (s NameserverSet) SeedRecords() []Record {
	records := make([]Record, 0, len(s))
	for _, ns := range s {
		records = append(records, Record{
			Name:    ApexName,
			Type:    TypeNS,
			Content: ns + ".",
			TTL:     DefaultTTL,
		})
	}
	return records
}
