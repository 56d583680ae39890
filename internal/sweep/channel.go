package sweep

import (
	"strings"

	"github.com/dmtrr0/evmsweep/internal/config"
)

// ChannelKind says where a signed payload is delivered.
type ChannelKind int

const (
	// ChannelPublic broadcasts through the node's mempool and waits for
	// inclusion.
	ChannelPublic ChannelKind = iota
	// ChannelPrivate posts the raw payload to a relay; acceptance is
	// terminal, there is no local inclusion wait.
	ChannelPrivate
)

func (k ChannelKind) String() string {
	if k == ChannelPrivate {
		return "private"
	}
	return "public"
}

// BroadcastChannel is fixed for the lifetime of one send's retry
// sequence; the sender never switches channel mid-escalation.
type BroadcastChannel struct {
	Kind      ChannelKind
	URL       string
	AuthToken string
}

// SelectChannel resolves the delivery channel for a network entry.
// Precedence: flashbots-style relay, secondary private relay, self-hosted
// relay if enabled, otherwise the public RPC endpoint. Pure configuration
// lookup; runtime conditions are never consulted.
func SelectChannel(n config.Network) (BroadcastChannel, error) {
	if u := strings.TrimSpace(n.FlashbotsRelay); u != "" {
		return BroadcastChannel{Kind: ChannelPrivate, URL: u}, nil
	}
	if u := strings.TrimSpace(n.PrivateRelay); u != "" {
		return BroadcastChannel{Kind: ChannelPrivate, URL: u}, nil
	}
	if n.SelfRelayEnabled && strings.TrimSpace(n.SelfRelayURL) != "" {
		return BroadcastChannel{
			Kind:      ChannelPrivate,
			URL:       strings.TrimSpace(n.SelfRelayURL),
			AuthToken: strings.TrimSpace(n.SelfRelayToken),
		}, nil
	}
	if u := strings.TrimSpace(n.RPCURL); u != "" {
		return BroadcastChannel{Kind: ChannelPublic, URL: u}, nil
	}
	return BroadcastChannel{}, ErrNoChannel
}
