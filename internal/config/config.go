package config

import (
	"os"
	"strconv"
	"strings"
)

// Settings keeps process-level options read from the environment.
// Naming mirrors the env keys to keep .env files self-describing.
type Settings struct {
	NetworksFile string
	ActivityFile string
	Network      string // default chain key

	FeeMultiplier string // decimal string, exact-rational scaled
	GasBufferPct  int64  // buffer on estimated token-transfer gas

	ConfirmWaitSec int
}

// Load reads settings from environment supporting both UPPER_CASE and
// lower_case keys.
func Load() Settings {
	get := func(keys []string, def string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(keys []string, def int) int {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
		return def
	}
	getInt64 := func(keys []string, def int64) int64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n
		}
		return def
	}

	st := Settings{}
	st.NetworksFile = get([]string{"networks_file", "NETWORKS_FILE"}, "networks.json")
	st.ActivityFile = get([]string{"activity_file", "ACTIVITY_FILE"}, "activity.log")
	st.Network = get([]string{"network", "NETWORK"}, "")
	st.FeeMultiplier = get([]string{"fee_mul", "FEE_MUL"}, "1")
	st.GasBufferPct = getInt64([]string{"buffer_pct", "BUFFER_PCT"}, 5)
	st.ConfirmWaitSec = getInt([]string{"confirm_wait_sec", "CONFIRM_WAIT_SEC"}, 60)
	return st
}
