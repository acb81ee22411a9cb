package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIDRSubnet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		prefix   string
		newbits  int
		netnum   int
		expected string
		wantErr  bool
	}{
		{name: "first /24 inside /16", prefix: "10.70.0.0/16", newbits: 8, netnum: 1, expected: "10.70.1.0/24"},
		{name: "zeroth subnet", prefix: "10.0.0.0/16", newbits: 8, netnum: 0, expected: "10.0.0.0/24"},
		{name: "netnum out of range", prefix: "10.0.0.0/16", newbits: 2, netnum: 4, wantErr: true},
		{name: "newbits too large", prefix: "10.0.0.0/24", newbits: 16, netnum: 0, wantErr: true},
		{name: "ipv6 rejected", prefix: "2001:db8::/32", newbits: 8, netnum: 0, wantErr: true},
		{name: "garbage", prefix: "not-a-cidr", newbits: 8, netnum: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CIDRSubnet(tt.prefix, tt.newbits, tt.netnum)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCIDRHost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		prefix   string
		hostnum  int
		expected string
		wantErr  bool
	}{
		{name: "node address", prefix: "10.70.1.0/24", hostnum: 11, expected: "10.70.1.11"},
		{name: "frontend from the end", prefix: "10.70.1.0/24", hostnum: -2, expected: "10.70.1.254"},
		{name: "broadcast from the end", prefix: "10.70.1.0/24", hostnum: -1, expected: "10.70.1.255"},
		{name: "hostnum too large", prefix: "10.70.1.0/24", hostnum: 256, wantErr: true},
		{name: "negative out of range", prefix: "10.70.1.0/30", hostnum: -5, wantErr: true},
		{name: "ipv6 rejected", prefix: "2001:db8::/64", hostnum: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CIDRHost(tt.prefix, tt.hostnum)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
