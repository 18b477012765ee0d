package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateDomainName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"example.com", false},
		{"a.b.c", false},
		{"label-with-hyphen.com", false},
		{"xn--bcher-kva.example", false},
		{"", true},
		{"com", true},
		{"Example.com", true},
		{"example.com.", true},
		{"too-long-label-" + strings.Repeat("a", 50) + ".com", true},
		{"-start-with-hyphen.com", true},
		{"end-with-hyphen-.com", true},
		{"invalid_char.com", true},
		{"double..dot.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateDomainName(tt.name); (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomainName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecordName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"@", false},
		{"www", false},
		{"a.b", false},
		{"_acme-challenge", false},
		{"_sip._tcp", false},
		{"*", false},
		{"*.dev", false},
		{"", true},
		{"WWW", true},
		{"dev.*", true},
		{"bad label", true},
		{strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateRecordName(tt.name); (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecordName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRecordContent(t *testing.T) {
	tests := []struct {
		typ     RecordType
		content string
		wantErr bool
	}{
		{TypeA, "192.0.2.1", false},
		{TypeA, "2001:db8::1", true},
		{TypeA, "not-an-ip", true},
		{TypeAAAA, "2001:db8::1", false},
		{TypeAAAA, "192.0.2.1", true},
		{TypeAAAA, "::ffff:192.0.2.1", true},
		{TypeCNAME, "target.example.com.", false},
		{TypeCNAME, "target.example.com", false},
		{TypeCNAME, "", true},
		{TypeNS, "ns1.kitchen.test.", false},
		{TypePTR, "host.example.com.", false},
		{TypeMX, "10 mail.example.com.", false},
		{TypeMX, "mail.example.com", false},
		{TypeMX, "99999 mail.example.com.", true},
		{TypeMX, "10 20 mail.example.com.", true},
		{TypeTXT, "v=spf1 -all", false},
		{TypeTXT, "", true},
		{TypeSOA, "ns1.kitchen.test. hostmaster.example.com. 1 7200 3600 1209600 300", false},
		{TypeSOA, "ns1.kitchen.test. hostmaster.example.com. 1 7200", true},
		{TypeSOA, "ns1.kitchen.test. hostmaster.example.com. x 7200 3600 1209600 300", true},
		{RecordType("CAA"), "0 issue \"letsencrypt.org\"", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+" "+tt.content, func(t *testing.T) {
			err := ValidateRecordContent(tt.typ, tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecordContent(%s, %q) error = %v, wantErr %v", tt.typ, tt.content, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateTTL(t *testing.T) {
	for _, ttl := range []int{1, 60, 3600, 2147483647} {
		if err := ValidateTTL(ttl); err != nil {
			t.Errorf("ValidateTTL(%d) unexpected error: %v", ttl, err)
		}
	}
	for _, ttl := range []int{0, -1, 2147483648} {
		if err := ValidateTTL(ttl); err == nil {
			t.Errorf("ValidateTTL(%d) expected error", ttl)
		}
	}
}

func TestValidateRecord(t *testing.T) {
	ok := &Record{DomainID: "d1", Name: "www.example.com", Type: TypeA, Content: "192.0.2.1", TTL: 300}
	if err := ValidateRecord(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var verr *ValidationError
	missing := *ok
	missing.DomainID = ""
	if err := ValidateRecord(&missing); !errors.As(err, &verr) || verr.Field != "domainId" {
		t.Errorf("expected domainId validation error, got %v", err)
	}

	badType := *ok
	badType.Type = "SPF"
	if err := ValidateRecord(&badType); !errors.As(err, &verr) || verr.Field != "type" {
		t.Errorf("expected type validation error, got %v", err)
	}

	badTTL := *ok
	badTTL.TTL = 0
	if err := ValidateRecord(&badTTL); !errors.As(err, &verr) || verr.Field != "ttl" {
		t.Errorf("expected ttl validation error, got %v", err)
	}
}
