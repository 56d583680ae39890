package sweep

import "fmt"

var (
	ErrEstimationUnavailable = fmt.Errorf("fee estimation unavailable")
	ErrRetriesExhausted      = fmt.Errorf("retries exhausted without confirmation")
	ErrRelayRejected         = fmt.Errorf("relay rejected submission")
	ErrNoChannel             = fmt.Errorf("no broadcast channel configured")
)
