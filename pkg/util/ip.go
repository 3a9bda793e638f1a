package util

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
)

// ParseIPv4Network parses a CIDR string that must name an IPv4 network
// address (host bits zero), e.g. "10.255.1.0/24".
func ParseIPv4Network(s string) (*net.IPNet, error) {
	ip, ipNet, err := net.ParseCIDR(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR notation: %s", s)
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("not an IPv4 network: %s", s)
	}
	if !ip.Equal(ipNet.IP) {
		return nil, fmt.Errorf("%s has host bits set (network is %s)", s, ipNet.String())
	}
	return ipNet, nil
}

// UsableHostCount returns the number of host addresses in n. Network and
// broadcast addresses are excluded except for /31 and /32 networks, where
// every address is usable.
func UsableHostCount(n *net.IPNet) uint64 {
	total := cidr.AddressCount(n)
	if hostBits(n) < 2 {
		return total
	}
	return total - 2
}

func hostBits(n *net.IPNet) int {
	ones, bits := n.Mask.Size()
	return bits - ones
}

// HostCursor walks the usable host addresses of a network in ascending order.
// Each step is O(1); the host list is never materialised.
type HostCursor struct {
	next  net.IP
	taken uint64
	total uint64
}

// NewHostCursor returns a cursor positioned at the first usable host of n.
func NewHostCursor(n *net.IPNet) *HostCursor {
	first, _ := cidr.AddressRange(n)
	if hostBits(n) >= 2 {
		first = cidr.Inc(first)
	}
	return &HostCursor{
		next:  first,
		total: UsableHostCount(n),
	}
}

// Next returns the next usable host, or false once the network is exhausted.
func (c *HostCursor) Next() (net.IP, bool) {
	if c.taken >= c.total {
		return nil, false
	}
	ip := c.next
	c.next = cidr.Inc(ip)
	c.taken++
	return ip, true
}

// Total returns the number of usable hosts in the cursor's network.
func (c *HostCursor) Total() uint64 {
	return c.total
}

// FirstHosts returns the first count usable hosts of n in ascending order.
func FirstHosts(n *net.IPNet, count int) ([]net.IP, error) {
	if count < 0 || uint64(count) > UsableHostCount(n) {
		return nil, fmt.Errorf("%s has %d usable hosts, need %d", n, UsableHostCount(n), count)
	}
	cur := NewHostCursor(n)
	hosts := make([]net.IP, 0, count)
	for i := 0; i < count; i++ {
		ip, _ := cur.Next()
		hosts = append(hosts, ip)
	}
	return hosts, nil
}

// NetworksOverlap reports whether a and b share any address.
func NetworksOverlap(a, b *net.IPNet) bool {
	return cidr.VerifyNoOverlap([]*net.IPNet{a, b}, allIPv4) != nil
}

var allIPv4 = &net.IPNet{IP: net.IPv4zero.To4(), Mask: net.CIDRMask(0, 32)}

// OffsetIPv4 returns base advanced by offset addresses. It fails when the
// result would leave the IPv4 address space.
func OffsetIPv4(base net.IP, offset int) (net.IP, error) {
	b4 := base.To4()
	if b4 == nil {
		return nil, fmt.Errorf("not an IPv4 address: %s", base)
	}
	v := int64(binary.BigEndian.Uint32(b4)) + int64(offset)
	if v < 0 || v > 0xFFFFFFFF {
		return nil, fmt.Errorf("%s + %d is outside the IPv4 address space", base, offset)
	}
	out := make(net.IP, net.IPv4len)
	binary.BigEndian.PutUint32(out, uint32(v))
	return out, nil
}

// ParseIPv4Base parses a management base address. Both a full address
// ("192.168.1.0") and a three-octet prefix ("192.168.1") are accepted; the
// latter is treated as the .0 address of that prefix.
func ParseIPv4Base(s string) (net.IP, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ".") == 2 {
		s += ".0"
	}
	ip := net.ParseIP(s)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("invalid IPv4 base address: %q", s)
	}
	return ip.To4(), nil
}

// FormatHostPrefix renders ip with the given prefix length ("10.1.0.1/30").
func FormatHostPrefix(ip net.IP, prefixLen int) string {
	return ip.String() + "/" + strconv.Itoa(prefixLen)
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidIPv4CIDR checks if a string is a valid IPv4 CIDR notation
func IsValidIPv4CIDR(s string) bool {
	ip, _, err := net.ParseCIDR(s)
	if err != nil {
		return false
	}
	return ip.To4() != nil
}

const maxASN = 4294967295 // max uint32, 4-byte ASN range

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int64) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}

// SplitIPMask splits a CIDR notation into IP and mask length
// Returns the IP (without mask) and mask length
func SplitIPMask(s string) (string, int) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return s, 0 // Return as-is if no mask
	}
	maskLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], maskLen
}
