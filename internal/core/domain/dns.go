// Package domain contains the core business entities and rules for dnskitchen.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// RecordType represents the type of a DNS record (e.g., A, AAAA, MX).
type RecordType string

const (
	// TypeA represents an IPv4 address record.
	TypeA RecordType = "A"
	// TypeAAAA represents an IPv6 address record.
	TypeAAAA RecordType = "AAAA"
	// TypeCNAME represents a canonical name record.
	TypeCNAME RecordType = "CNAME"
	// TypeMX represents a mail exchange record.
	TypeMX RecordType = "MX"
	// TypeNS represents a name server record.
	TypeNS RecordType = "NS"
	// TypePTR represents a pointer record.
	TypePTR RecordType = "PTR"
	// TypeSOA represents a start of authority record.
	TypeSOA RecordType = "SOA"
	// TypeSRV represents a service locator record (RFC 2782).
	TypeSRV RecordType = "SRV"
	// TypeTXT represents a text record.
	TypeTXT RecordType = "TXT"
)

// RecordTypes lists every supported record type.
var RecordTypes = []RecordType{TypeA, TypeAAAA, TypeCNAME, TypeMX, TypeNS, TypePTR, TypeSOA, TypeSRV, TypeTXT}

// ParseRecordType validates s against the supported record types.
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range RecordTypes {
		if t == known {
			return t, nil
		}
	}
	return "", NewValidationError("type", fmt.Sprintf("unsupported record type %q", s))
}

// DomainStatus is the delegation state of a zone.
type DomainStatus string

const (
	// StatusPending marks a zone whose delegation has not been observed yet.
	StatusPending DomainStatus = "PENDING"
	// StatusActive marks a zone delegated to one of the operator nameservers.
	StatusActive DomainStatus = "ACTIVE"
)

// ApexName is the literal used for the zone root.
const ApexName = "@"

// DefaultTTL applies to records created without an explicit ttl.
const DefaultTTL = 3600

// Domain represents a DNS zone owned by a namespace.
type Domain struct {
	ID        string       `json:"id"`
	Namespace string       `json:"namespace"`
	Name      string       `json:"name"` // lowercase, no trailing dot
	Status    DomainStatus `json:"status"`
	Records   []Record     `json:"records,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Record represents a DNS resource record within a zone.
type Record struct {
	ID        string     `json:"id"`
	DomainID  string     `json:"domainId"`
	Name      string     `json:"name"` // fully qualified, or "@"
	Type      RecordType `json:"type"`
	Content   string     `json:"content"`
	TTL       int        `json:"ttl"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DomainPatch carries the client-mutable fields of a domain.
type DomainPatch struct {
	Name *string
}

// RecordPatch carries the client-mutable fields of a record. Name is relative,
// exactly as on create.
type RecordPatch struct {
	Name    *string
	Type    *RecordType
	Content *string
	TTL     *int
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Content == nil && p.TTL == nil
}

// NormalizeDomainName lowercases a zone name and strips surrounding space and
// the trailing root dot.
func NormalizeDomainName(name string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
}

// QualifyRecordName derives the stored record name from the name supplied by a
// caller: "@" is kept literally, the zone name itself is kept as is, anything
// else is suffixed with the zone name.
func QualifyRecordName(name, domainName string) string {
	switch name {
	case ApexName, domainName:
		return name
	}
	return name + "." + domainName
}

// RelativeRecordName is the inverse of QualifyRecordName for names under the zone.
func RelativeRecordName(stored, domainName string) string {
	if stored == ApexName || stored == domainName {
		return stored
	}
	return strings.TrimSuffix(stored, "."+domainName)
}

// NameGroup returns the stored spellings that denote the same owner name as
// stored. The apex can be stored both as "@" and as the zone name.
func NameGroup(stored, domainName string) []string {
	if stored == ApexName || stored == domainName {
		return []string{ApexName, domainName}
	}
	return []string{stored}
}

// RenameRecord rewrites a stored record name when its zone is renamed.
func RenameRecord(stored, oldDomain, newDomain string) string {
	switch {
	case stored == ApexName:
		return stored
	case stored == oldDomain:
		return newDomain
	case strings.HasSuffix(stored, "."+oldDomain):
		return strings.TrimSuffix(stored, oldDomain) + newDomain
	}
	return stored
}
