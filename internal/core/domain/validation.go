package domain

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

var (
	validLabelRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	// Owner names additionally allow service labels (_acme-challenge, _sip)
	// and a leading wildcard.
	validOwnerLabelRegex = regexp.MustCompile(`^(\*|_?[a-z0-9]([a-z0-9_-]{0,61}[a-z0-9])?)$`)
)

// ValidateDomainName checks that name is a lowercase zone name without the
// trailing root dot.
func ValidateDomainName(name string) error {
	if name == "" {
		return NewValidationError("name", "domain name cannot be empty")
	}
	if name != strings.ToLower(name) {
		return NewValidationError("name", "domain name must be lowercase")
	}
	if strings.HasSuffix(name, ".") {
		return NewValidationError("name", "domain name must not end with a dot")
	}
	if len(name) > 253 {
		return NewValidationError("name", "domain name exceeds 253 characters")
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return NewValidationError("name", "domain name needs at least two labels")
	}
	for _, label := range labels {
		if label == "" {
			return NewValidationError("name", "domain name contains empty label")
		}
		if len(label) > 63 {
			return NewValidationError("name", fmt.Sprintf("label '%s' exceeds 63 characters", label))
		}
		if !validLabelRegex.MatchString(label) {
			return NewValidationError("name", fmt.Sprintf("label '%s' contains invalid characters or format", label))
		}
	}
	return nil
}

// ValidateRecordName checks a caller supplied (relative) owner name.
func ValidateRecordName(name string) error {
	if name == ApexName {
		return nil
	}
	if name == "" {
		return NewValidationError("name", "record name cannot be empty")
	}
	if name != strings.ToLower(name) {
		return NewValidationError("name", "record name must be lowercase")
	}
	if len(name) > 255 {
		return NewValidationError("name", "record name exceeds 255 characters")
	}
	for i, label := range strings.Split(name, ".") {
		if label == "*" && i != 0 {
			return NewValidationError("name", "wildcard is only allowed as the first label")
		}
		if len(label) > 63 || !validOwnerLabelRegex.MatchString(label) {
			return NewValidationError("name", fmt.Sprintf("label '%s' contains invalid characters or format", label))
		}
	}
	return nil
}

// ValidateHostname checks a target host name; the trailing dot is optional.
func ValidateHostname(field, host string) error {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if host == "" {
		return NewValidationError(field, "host name cannot be empty")
	}
	if len(host) > 253 {
		return NewValidationError(field, "host name exceeds 253 characters")
	}
	for _, label := range strings.Split(host, ".") {
		if len(label) > 63 || !validOwnerLabelRegex.MatchString(label) || label == "*" {
			return NewValidationError(field, fmt.Sprintf("invalid host name %q", host))
		}
	}
	return nil
}

// ValidateTTL checks a record ttl in seconds.
func ValidateTTL(ttl int) error {
	if ttl <= 0 {
		return NewValidationError("ttl", "ttl must be a positive integer")
	}
	if ttl > 2147483647 {
		return NewValidationError("ttl", "ttl exceeds 2^31-1")
	}
	return nil
}

// ValidateRecordContent checks content against the semantics of t.
func ValidateRecordContent(t RecordType, content string) error {
	switch t {
	case TypeA:
		addr, err := netip.ParseAddr(content)
		if err != nil || !addr.Is4() {
			return NewValidationError("content", fmt.Sprintf("%q is not an IPv4 address", content))
		}
	case TypeAAAA:
		addr, err := netip.ParseAddr(content)
		if err != nil || !addr.Is6() || addr.Is4In6() {
			return NewValidationError("content", fmt.Sprintf("%q is not an IPv6 address", content))
		}
	case TypeCNAME, TypeNS, TypePTR:
		return ValidateHostname("content", content)
	case TypeMX:
		return ValidateMXContent(content)
	case TypeSRV:
		return ValidateSRVContent(content)
	case TypeSOA:
		return ValidateSOAContent(content)
	case TypeTXT:
		if content == "" {
			return NewValidationError("content", "TXT content cannot be empty")
		}
	default:
		return NewValidationError("type", fmt.Sprintf("unsupported record type %q", t))
	}
	return nil
}

// ValidateMXContent accepts "priority exchange" or a bare exchange host.
func ValidateMXContent(content string) error {
	parts := strings.Fields(content)
	switch len(parts) {
	case 1:
		return ValidateHostname("content", parts[0])
	case 2:
		if v, err := strconv.Atoi(parts[0]); err != nil || v < 0 || v > 65535 {
			return NewValidationError("content", fmt.Sprintf("invalid MX priority: %s (must be 0-65535)", parts[0]))
		}
		return ValidateHostname("content", parts[1])
	}
	return NewValidationError("content", "MX content must be in format: [priority] exchange")
}

// ValidateSRVContent ensures SRV content follows "priority weight port target" format.
func ValidateSRVContent(content string) error {
	parts := strings.Fields(content)
	if len(parts) != 4 {
		return NewValidationError("content", "SRV content must be in format: priority weight port target")
	}

	for i, name := range []string{"priority", "weight", "port"} {
		val, err := strconv.Atoi(parts[i])
		if err != nil || val < 0 || val > 65535 {
			return NewValidationError("content", fmt.Sprintf("invalid %s: %s (must be 0-65535)", name, parts[i]))
		}
	}

	target := parts[3]
	if !strings.HasSuffix(target, ".") {
		return NewValidationError("content", "target must be a FQDN (end with a dot)")
	}
	return nil
}

// ValidateSOAContent ensures SOA content follows
// "mname rname serial refresh retry expire minimum".
func ValidateSOAContent(content string) error {
	parts := strings.Fields(content)
	if len(parts) != 7 {
		return NewValidationError("content", "SOA content must be in format: mname rname serial refresh retry expire minimum")
	}
	for _, host := range parts[:2] {
		if err := ValidateHostname("content", host); err != nil {
			return err
		}
	}
	for _, n := range parts[2:] {
		if _, err := strconv.ParseUint(n, 10, 32); err != nil {
			return NewValidationError("content", fmt.Sprintf("invalid SOA number %q", n))
		}
	}
	return nil
}

// ValidateRecord checks a record about to be written.
func ValidateRecord(r *Record) error {
	if r.DomainID == "" {
		return NewValidationError("domainId", "domainId is required")
	}
	if _, err := ParseRecordType(string(r.Type)); err != nil {
		return err
	}
	if err := ValidateTTL(r.TTL); err != nil {
		return err
	}
	return ValidateRecordContent(r.Type, r.Content)
}
