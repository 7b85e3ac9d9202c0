// Package warden audits player inventories against the provenance ledger.
// Items that cannot be proven legitimate are removed; players holding
// disallowed items or impossible stacks are banned.
package warden

import (
	"time"

	"warden.ai/internal/persistence/ledger"
	"warden.ai/internal/sim/session"
)

// Ledger is the provenance store. Reads must observe earlier writes to the
// same store instance; the sweeper relies on that when it follows a recorder.
type Ledger interface {
	Record(rec ledger.ProvenanceRecord) error
	CountMatching(itemID, stack int) (int, error)
}

// BanStore is the host's ban table.
type BanStore interface {
	ExistingBan(username string) (bool, error)
	InsertBan(identity, username, reason, origin string, start, expiry time.Time) error
}

// Broadcaster is the outbound side of the game network layer.
type Broadcaster interface {
	SendSlotUpdate(playerIndex, slot int, s session.InventorySlot)
	SendInfo(sess *session.Session, text string)
	SendWarning(sess *session.Session, text string)
	BroadcastAll(text string, color [3]uint8)
}

// Directory enumerates connected sessions. Order is not significant.
type Directory interface {
	Active() []*session.Session
}

// AuditEntry is one operator-visible corrective action taken by a sweep.
type AuditEntry struct {
	Time        string `json:"time"`
	Action      string `json:"action"` // "purge" or "ban"
	Player      string `json:"player"`
	PlayerIndex int    `json:"player_index"`
	Slot        int    `json:"slot,omitempty"`
	ItemID      int    `json:"item_id,omitempty"`
	Stack       int    `json:"stack,omitempty"`
	ItemName    string `json:"item_name,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// AuditLogger persists sweep actions. Implemented in internal/persistence/log.
type AuditLogger interface {
	WriteAudit(AuditEntry) error
}
