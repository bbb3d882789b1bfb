package domain

import (
	"fmt"
	"strings"
)

// Network is the target Sui chain environment.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
)

// ParseNetwork normalises textual input into a supported network.
func ParseNetwork(value string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(NetworkMainnet):
		return NetworkMainnet, nil
	case string(NetworkTestnet):
		return NetworkTestnet, nil
	case string(NetworkDevnet), "":
		return NetworkDevnet, nil
	default:
		return "", fmt.Errorf("unknown network %q", value)
	}
}

// DefaultRPCURL returns the public fullnode endpoint for the network.
func (n Network) DefaultRPCURL() string {
	switch n {
	case NetworkMainnet:
		return "https://fullnode.mainnet.sui.io:443"
	case NetworkTestnet:
		return "https://fullnode.testnet.sui.io:443"
	default:
		return "https://fullnode.devnet.sui.io:443"
	}
}
