package domain

import (
	"reflect"
	"strings"
	"testing"
)

func TestNewNameserverSet(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want NameserverSet
	}{
		{"single", []string{"ns1.kitchen.test"}, NameserverSet{"ns1.kitchen.test"}},
		{"comma list", []string{" NS1.kitchen.test. , ns2.kitchen.test ,"}, NameserverSet{"ns1.kitchen.test", "ns2.kitchen.test"}},
		{"explicit list with duplicates", []string{"ns1.kitchen.test", "ns1.kitchen.test.", "ns2.kitchen.test"}, NameserverSet{"ns1.kitchen.test", "ns2.kitchen.test"}},
		{"empty", []string{""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewNameserverSet(tt.in...); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestNameserverSet_Intersects(t *testing.T) {
	set := NewNameserverSet("ns1.kitchen.test,ns2.kitchen.test")
	if !set.Intersects([]string{"ns9.other.test.", "NS2.Kitchen.Test."}) {
		t.Error("expected overlap")
	}
	if set.Intersects([]string{"ns1.other.test."}) {
		t.Error("unexpected overlap")
	}
	if set.Intersects(nil) {
		t.Error("empty resolution never overlaps")
	}
}

func TestNameserverSet_SeedRecords(t *testing.T) {
	recs := NewNameserverSet("ns1.kitchen.test", "ns2.kitchen.test").SeedRecords()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Name != ApexName || r.Type != TypeNS || r.TTL != DefaultTTL || !strings.HasSuffix(r.Content, ".") {
			t.Errorf("unexpected seed record %+v", r)
		}
	}
}
