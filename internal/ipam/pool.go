// Package ipam reconciles protocol-adapter interface-address observations
// into the IPAM inventory (spec.md §4.6).
package ipam

import (
	"fmt"
	"net/netip"

	"github.com/netwatch-io/netwatch/internal/models"
	"go4.org/netipx"
)

// FindPool returns the first pool (in the given order) that contains ip,
// testing each pool according to its EntryType (spec.md §4.6 step 2,
// §8 "CIDR containment" testable property).
func FindPool(ip string, pools []*models.IpamPool) (*models.IpamPool, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("parse ip %q: %w", ip, err)
	}
	for _, p := range pools {
		ok, err := poolContains(p, addr)
		if err != nil {
			continue // a malformed pool definition simply never matches
		}
		if ok {
			return p, nil
		}
	}
	return nil, nil
}

func poolContains(p *models.IpamPool, addr netip.Addr) (bool, error) {
	switch p.EntryType {
	case models.IpamEntryCIDR:
		return cidrContains(p.CIDR, addr)
	case models.IpamEntryRange:
		return rangeContains(p.RangeStart, p.RangeEnd, addr)
	case models.IpamEntrySingle:
		if p.RangeStart != "" {
			if a, err := netip.ParseAddr(p.RangeStart); err == nil && a == addr {
				return true, nil
			}
		}
		if p.CIDR != "" {
			if a, err := netip.ParseAddr(p.CIDR); err == nil && a == addr {
				return true, nil
			}
			if pfx, err := netip.ParsePrefix(p.CIDR); err == nil && pfx.IsSingleIP() && pfx.Addr() == addr {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown pool entry type %q", p.EntryType)
	}
}

// cidrContains implements spec.md §8's CIDR-containment invariant: for
// prefix <= 30, the usable range excludes the network and broadcast
// addresses; for /31 and /32, every address in the mask range is valid
// (there is no network/broadcast distinction to exclude).
func cidrContains(cidr string, addr netip.Addr) (bool, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return false, err
	}
	if !prefix.Contains(addr) {
		return false, nil
	}
	bits := prefix.Bits()
	maxBits := prefix.Addr().BitLen()
	if bits >= maxBits-1 {
		return true, nil // /31 or /32 (or /127, /128): no net/broadcast exclusion
	}

	r := netipx.RangeOfPrefix(prefix)
	network := r.From()
	broadcast := r.To()
	if addr == network || addr == broadcast {
		return false, nil
	}
	return true, nil
}

func rangeContains(start, end string, addr netip.Addr) (bool, error) {
	from, err := netip.ParseAddr(start)
	if err != nil {
		return false, err
	}
	to, err := netip.ParseAddr(end)
	if err != nil {
		return false, err
	}
	r := netipx.IPRangeFrom(from, to)
	return r.Contains(addr), nil
}
