package warden

import (
	"log"

	"github.com/google/uuid"

	"warden.ai/internal/persistence/ledger"
	"warden.ai/internal/protocol"
	"warden.ai/internal/sim/session"
)

// Recorder turns item drop events into ledger rows. Recording is
// best-effort: a dropped record only makes a later purge more conservative,
// so every failure path logs and returns without surfacing to the transport.
type Recorder struct {
	ledger Ledger
	sink   Broadcaster
	log    *log.Logger
}

func NewRecorder(ledger Ledger, sink Broadcaster, logger *log.Logger) *Recorder {
	return &Recorder{ledger: ledger, sink: sink, log: logger}
}

// HandleItemDrop decodes the raw drop payload and appends a provenance row.
func (r *Recorder) HandleItemDrop(sess *session.Session, payload []byte) {
	p, err := protocol.DecodeDropPayload(payload)
	if err != nil {
		r.logf("recorder: drop payload: %v", err)
		return
	}

	uid := uuid.NewString()
	rec := ledger.ProvenanceRecord{
		UID:    uid,
		ItemID: int(p.ItemID),
		Stack:  int(p.Stack),
		Source: SourceDrop,
	}
	if err := r.ledger.Record(rec); err != nil {
		r.logf("recorder: %v", err)
		return
	}

	if sess != nil {
		r.sink.SendInfo(sess, "Item tracked with ID: "+uid)
	}
}

func (r *Recorder) logf(format string, args ...any) {
	if r.log != nil {
		r.log.Printf(format, args...)
	}
}
