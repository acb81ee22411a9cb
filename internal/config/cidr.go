package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// CIDRSubnet calculates a subnet range inside a parent range, in the manner
// of Terraform's cidrsubnet: newbits extends the prefix length, netnum
// selects the zero-based subnet index. IPv4 only.
func CIDRSubnet(prefix string, newbits, netnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 ranges are supported, got %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits
	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}
	if netnum >= 1<<newbits {
		return "", fmt.Errorf("subnet number %d exceeds the %d subnets available", netnum, 1<<newbits)
	}

	ipInt := ipv4ToUint(network.IP.To4())
	subnetSize := uint64(1) << (totalBits - newMaskSize)
	// #nosec G115
	ipInt += uint64(netnum) * subnetSize

	return fmt.Sprintf("%s/%d", uintToIPv4(ipInt).String(), newMaskSize), nil
}

// CIDRHost calculates a host address inside a range, in the manner of
// Terraform's cidrhost. A negative hostnum counts from the end of the
// range. IPv4 only.
func CIDRHost(prefix string, hostnum int) (string, error) {
	_, network, err := net.ParseCIDR(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if network.IP.To4() == nil {
		return "", fmt.Errorf("only IPv4 ranges are supported, got %s", prefix)
	}

	maskSize, totalBits := network.Mask.Size()
	maxHosts := uint64(1) << (totalBits - maskSize)

	var offset uint64
	if hostnum < 0 {
		abs := uint64(-hostnum)
		if abs > maxHosts {
			return "", fmt.Errorf("host number %d exceeds the %d hosts available", hostnum, maxHosts)
		}
		offset = maxHosts - abs
	} else {
		offset = uint64(hostnum)
		if offset >= maxHosts {
			return "", fmt.Errorf("host number %d exceeds the %d hosts available", hostnum, maxHosts)
		}
	}

	return uintToIPv4(ipv4ToUint(network.IP.To4()) + offset).String(), nil
}

func ipv4ToUint(ip net.IP) uint64 {
	return uint64(binary.BigEndian.Uint32(ip))
}

func uintToIPv4(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
