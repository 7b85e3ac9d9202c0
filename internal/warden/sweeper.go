package warden

import (
	"context"
	"log"
	"time"

	"warden.ai/internal/sim/catalogs"
	"warden.ai/internal/sim/session"
)

// Sweeper runs the recurring reconciliation pass. All sweeps execute inline
// in the Run goroutine, so two passes can never overlap; ticks that fire
// while a pass is still running are coalesced by the ticker.
type Sweeper struct {
	dir      Directory
	ledger   Ledger
	policy   *Policy
	enforcer *Enforcer
	sink     Broadcaster
	cats     *catalogs.Catalogs
	audit    AuditLogger // optional, may be nil
	log      *log.Logger

	interval time.Duration
}

type SweeperConfig struct {
	Directory Directory
	Ledger    Ledger
	Policy    *Policy
	Enforcer  *Enforcer
	Sink      Broadcaster
	Catalogs  *catalogs.Catalogs
	Audit     AuditLogger
	Logger    *log.Logger
	Interval  time.Duration
}

func NewSweeper(cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &Sweeper{
		dir:      cfg.Directory,
		ledger:   cfg.Ledger,
		policy:   cfg.Policy,
		enforcer: cfg.Enforcer,
		sink:     cfg.Sink,
		cats:     cfg.Catalogs,
		audit:    cfg.Audit,
		log:      cfg.Logger,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one full pass over all active sessions. A failure on one
// session never aborts the pass.
func (s *Sweeper) Sweep() {
	for _, sess := range s.dir.Active() {
		if !sess.Active() {
			continue
		}
		acct := sess.Account()
		if acct == nil {
			continue
		}
		s.sweepSession(sess, acct)
	}
}

func (s *Sweeper) sweepSession(sess *session.Session, acct *session.Account) {
	slots := sess.Slots()

	if s.policy.IsCheater(slots) {
		s.writeAudit(AuditEntry{
			Time:        time.Now().UTC().Format(time.RFC3339Nano),
			Action:      "ban",
			Player:      acct.Username,
			PlayerIndex: sess.Index,
			Reason:      "illegal item or stack overflow",
		})
		s.enforcer.Ban(sess.IP, acct.Username, acct)
	}

	// Purge pass. Independent of the cheating classification: every active
	// slot is checked against the ledger regardless of the ban outcome.
	changed := false
	for i, slot := range slots {
		if !slot.Active() {
			continue
		}
		untracked, err := SlotUntracked(s.ledger, slot)
		if err != nil {
			// Inconclusive evidence: never purge on a store error.
			s.logf("sweep: slot %d for %s: %v", i, acct.Username, err)
			continue
		}
		if !untracked {
			continue
		}

		name := slot.Name
		if name == "" {
			name = s.cats.ItemName(slot.ItemID)
		}
		sess.ClearSlot(i)
		changed = true
		s.sink.SendWarning(sess, "Untracked item removed: "+name)
		s.writeAudit(AuditEntry{
			Time:        time.Now().UTC().Format(time.RFC3339Nano),
			Action:      "purge",
			Player:      acct.Username,
			PlayerIndex: sess.Index,
			Slot:        i,
			ItemID:      slot.ItemID,
			Stack:       slot.Stack,
			ItemName:    name,
		})
	}

	if changed {
		// Resync the whole inventory range, not just changed slots; one
		// update message per slot index keeps the protocol simple.
		for i := 0; i < sess.SlotCount(); i++ {
			slot, ok := sess.Slot(i)
			if !ok {
				continue
			}
			s.sink.SendSlotUpdate(sess.Index, i, slot)
		}
	}
}

func (s *Sweeper) writeAudit(e AuditEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.WriteAudit(e); err != nil {
		s.logf("sweep: audit log: %v", err)
	}
}

func (s *Sweeper) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}
