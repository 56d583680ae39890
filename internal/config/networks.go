package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Network is one chain entry from the registry file. Relay fields are
// optional; an entry with only RPCURL set broadcasts through the public
// mempool.
type Network struct {
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
	ChainID int64  `json:"chainId"`

	// Private submission preferences, highest precedence first.
	FlashbotsRelay   string `json:"flashbotsRelay,omitempty"`
	PrivateRelay     string `json:"privateRelay,omitempty"`
	SelfRelayEnabled bool   `json:"selfRelayEnabled,omitempty"`
	SelfRelayURL     string `json:"selfRelayUrl,omitempty"`
	SelfRelayToken   string `json:"selfRelayToken,omitempty"`
}

// Registry maps chain key (e.g. "mainnet", "base") to its network entry.
type Registry map[string]Network

// LoadRegistry decodes the networks file.
func LoadRegistry(path string) (Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read networks file: %w", err)
	}
	var reg Registry
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("parse networks file: %w", err)
	}
	for key, n := range reg {
		if strings.TrimSpace(n.RPCURL) == "" {
			return nil, fmt.Errorf("network %q has no rpcUrl", key)
		}
	}
	return reg, nil
}

// Keys returns the registered chain keys sorted for stable prompts.
func (r Registry) Keys() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
