package util

import (
	"net"
	"testing"
)

func mustNet(t *testing.T, s string) *net.IPNet {
	t.Helper()
	n, err := ParseIPv4Network(s)
	if err != nil {
		t.Fatalf("ParseIPv4Network(%q): %v", s, err)
	}
	return n
}

func TestParseIPv4Network(t *testing.T) {
	tests := []struct {
		name    string
		cidr    string
		wantErr bool
	}{
		{"valid /24", "10.255.1.0/24", false},
		{"valid /16", "10.1.0.0/16", false},
		{"valid /32", "10.0.0.1/32", false},
		{"surrounding spaces", " 10.1.0.0/16 ", false},
		{"host bits set", "10.1.0.1/16", true},
		{"no mask", "10.1.0.0", true},
		{"bad ip", "999.1.0.0/16", true},
		{"ipv6", "2001:db8::/32", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIPv4Network(tt.cidr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIPv4Network(%q) error = %v, wantErr %v", tt.cidr, err, tt.wantErr)
			}
		})
	}
}

func TestUsableHostCount(t *testing.T) {
	tests := []struct {
		cidr string
		want uint64
	}{
		{"10.0.0.0/24", 254},
		{"10.0.0.0/30", 2},
		{"10.0.0.0/31", 2},
		{"10.0.0.1/32", 1},
		{"10.1.0.0/16", 65534},
	}

	for _, tt := range tests {
		if got := UsableHostCount(mustNet(t, tt.cidr)); got != tt.want {
			t.Errorf("UsableHostCount(%s) = %d, want %d", tt.cidr, got, tt.want)
		}
	}
}

func TestHostCursor_Order(t *testing.T) {
	tests := []struct {
		cidr string
		want []string
	}{
		{"10.1.0.0/29", []string{"10.1.0.1", "10.1.0.2", "10.1.0.3", "10.1.0.4", "10.1.0.5", "10.1.0.6"}},
		{"10.1.0.0/31", []string{"10.1.0.0", "10.1.0.1"}},
		{"10.1.0.7/32", []string{"10.1.0.7"}},
		{"10.1.0.252/30", []string{"10.1.0.253", "10.1.0.254"}},
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			cur := NewHostCursor(mustNet(t, tt.cidr))
			var got []string
			for {
				ip, ok := cur.Next()
				if !ok {
					break
				}
				got = append(got, ip.String())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("host[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
			if ip, ok := cur.Next(); ok {
				t.Errorf("Next() after exhaustion = %s, want none", ip)
			}
		})
	}
}

func TestHostCursor_CrossesOctetBoundary(t *testing.T) {
	cur := NewHostCursor(mustNet(t, "10.1.0.0/16"))
	var last net.IP
	for i := 0; i < 256; i++ {
		last, _ = cur.Next()
	}
	if last.String() != "10.1.1.0" {
		t.Errorf("256th host = %s, want 10.1.1.0", last)
	}
}

func TestFirstHosts(t *testing.T) {
	hosts, err := FirstHosts(mustNet(t, "10.255.1.0/24"), 2)
	if err != nil {
		t.Fatalf("FirstHosts: %v", err)
	}
	if hosts[0].String() != "10.255.1.1" || hosts[1].String() != "10.255.1.2" {
		t.Errorf("FirstHosts = %v, want [10.255.1.1 10.255.1.2]", hosts)
	}

	if _, err := FirstHosts(mustNet(t, "10.255.1.0/30"), 3); err == nil {
		t.Error("FirstHosts should fail when the network is too small")
	}
}

func TestNetworksOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"10.255.1.0/24", "10.255.2.0/24", false},
		{"10.0.0.0/8", "10.1.0.0/16", true},
		{"10.1.0.0/16", "10.0.0.0/8", true},
		{"10.1.0.0/16", "10.1.0.0/16", true},
		{"192.168.0.0/30", "192.168.0.4/30", false},
	}

	for _, tt := range tests {
		if got := NetworksOverlap(mustNet(t, tt.a), mustNet(t, tt.b)); got != tt.want {
			t.Errorf("NetworksOverlap(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestOffsetIPv4(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		offset  int
		want    string
		wantErr bool
	}{
		{"simple", "192.168.1.0", 10, "192.168.1.10", false},
		{"crosses octet", "192.168.1.250", 10, "192.168.2.4", false},
		{"zero", "10.0.0.1", 0, "10.0.0.1", false},
		{"overflow", "255.255.255.250", 10, "", true},
		{"negative", "0.0.0.1", -2, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetIPv4(net.ParseIP(tt.base), tt.offset)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OffsetIPv4(%s, %d) error = %v, wantErr %v", tt.base, tt.offset, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("OffsetIPv4(%s, %d) = %s, want %s", tt.base, tt.offset, got, tt.want)
			}
		})
	}
}

func TestParseIPv4Base(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"192.168.1", "192.168.1.0", false},
		{"192.168.1.0", "192.168.1.0", false},
		{"10.0.0.5", "10.0.0.5", false},
		{"192.168", "", true},
		{"not-an-ip", "", true},
	}

	for _, tt := range tests {
		got, err := ParseIPv4Base(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseIPv4Base(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got.String() != tt.want {
			t.Errorf("ParseIPv4Base(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatHostPrefix(t *testing.T) {
	if got := FormatHostPrefix(net.ParseIP("10.1.0.1"), 30); got != "10.1.0.1/30" {
		t.Errorf("FormatHostPrefix = %q, want 10.1.0.1/30", got)
	}
}

func TestIsValidIPv4(t *testing.T) {
	tests := []struct {
		name  string
		ipStr string
		want  bool
	}{
		{"valid IP", "192.168.1.1", true},
		{"valid zero", "0.0.0.0", true},
		{"invalid - out of range", "256.1.1.1", false},
		{"invalid - text", "invalid", false},
		{"invalid - empty", "", false},
		{"invalid - IPv6", "::1", false},
		{"invalid - partial", "192.168.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidIPv4(tt.ipStr); got != tt.want {
				t.Errorf("IsValidIPv4(%q) = %v, want %v", tt.ipStr, got, tt.want)
			}
		})
	}
}

func TestIsValidIPv4CIDR(t *testing.T) {
	tests := []struct {
		cidr string
		want bool
	}{
		{"192.168.1.0/24", true},
		{"10.0.0.1/32", true},
		{"192.168.1.1", false},
		{"192.168.1.0/33", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidIPv4CIDR(tt.cidr); got != tt.want {
			t.Errorf("IsValidIPv4CIDR(%q) = %v, want %v", tt.cidr, got, tt.want)
		}
	}
}

func TestValidateASN(t *testing.T) {
	tests := []struct {
		name    string
		asn     int64
		wantErr bool
	}{
		{"valid 2-byte ASN", 65000, false},
		{"valid 4-byte ASN", 4200000000, false},
		{"valid min", 1, false},
		{"invalid zero", 0, true},
		{"invalid negative", -1, true},
		{"invalid too large", 4294967296, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateASN(tt.asn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateASN(%d) error = %v, wantErr %v", tt.asn, err, tt.wantErr)
			}
		})
	}
}

func TestSplitIPMask(t *testing.T) {
	tests := []struct {
		cidr     string
		wantIP   string
		wantMask int
	}{
		{"10.1.1.1/30", "10.1.1.1", 30},
		{"10.0.0.1/32", "10.0.0.1", 32},
		{"10.0.0.1", "10.0.0.1", 0},
	}

	for _, tt := range tests {
		ip, mask := SplitIPMask(tt.cidr)
		if ip != tt.wantIP || mask != tt.wantMask {
			t.Errorf("SplitIPMask(%q) = (%q, %d), want (%q, %d)", tt.cidr, ip, mask, tt.wantIP, tt.wantMask)
		}
	}
}
