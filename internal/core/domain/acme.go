package domain

import "strings"

// ACMEChallengeLabel prefixes the owner name of DNS-01 TXT records.
const ACMEChallengeLabel = "_acme-challenge"

// ACMETTL is the ttl of challenge records.
const ACMETTL = 60

// ACMEChallenge is the payload of the DNS-01 webhook calls.
type ACMEChallenge struct {
	APIKey  string `json:"apiKey"`
	DNSName string `json:"dnsName"`
	Key     string `json:"key"`
}

// ChallengeName returns the fully qualified TXT owner for the challenge.
func (c ACMEChallenge) ChallengeName() string {
	return ACMEChallengeLabel + "." + NormalizeDomainName(strings.TrimPrefix(c.DNSName, "*."))
}

// CandidateZones lists name and each of its parents with at least two
// labels, longest first.
func CandidateZones(name string) []string {
	name = NormalizeDomainName(name)
	labels := strings.Split(name, ".")
	var out []string
	for i := 0; i+2 <= len(labels); i++ {
		out = append(out, strings.Join(labels[i:], "."))
	}
	return out
}

// ImportResult summarizes a zone file import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
