// Package activity keeps a durable, append-only record of every send
// attempt and outcome. Writes are best-effort: a failed append is logged
// and never aborts the send that produced it.
package activity

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Record kinds.
const (
	KindAttempt       = "attempt"
	KindConfirmed     = "confirmed"
	KindRelayAccepted = "relay_accepted"
	KindSubmitError   = "submit_error"
	KindDrainResolved = "drain_resolved"
	KindExhausted     = "exhausted"
)

// Record is one immutable activity entry. Entries are never rewritten
// after creation.
type Record struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`

	Channel   string `json:"channel,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	ValueWei  string `json:"valueWei,omitempty"`
	Nonce     uint64 `json:"nonce,omitempty"`
	Attempt   int    `json:"attempt,omitempty"`
	TipWei    string `json:"tipWei,omitempty"`
	CapWei    string `json:"capWei,omitempty"`

	TxHash    string `json:"txHash,omitempty"`
	Block     string `json:"block,omitempty"`
	RelayBody string `json:"relayBody,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Recorder is the one-way sink the sender and drain loop write to.
type Recorder interface {
	Append(rec Record)
}

// FileRecorder appends JSON lines to a log file. The file is opened in
// append mode on every write so a crash between records cannot clobber
// earlier entries.
type FileRecorder struct {
	path  string
	runID string
	log   *zap.Logger
	mu    sync.Mutex
}

func NewFileRecorder(path string, log *zap.Logger) *FileRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileRecorder{path: path, runID: uuid.NewString(), log: log}
}

// RunID identifies this process run on every record.
func (r *FileRecorder) RunID() string { return r.runID }

func (r *FileRecorder) Append(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.RunID = r.runID
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		r.log.Warn("activity log open failed", zap.Error(err))
		return
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		r.log.Warn("activity log write failed", zap.Error(err))
	}
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) Append(Record) {}
