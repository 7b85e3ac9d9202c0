package warden

import (
	"errors"
	"testing"

	"warden.ai/internal/persistence/ledger"
	"warden.ai/internal/sim/session"
)

type fakeDir struct {
	sessions []*session.Session
}

func (d *fakeDir) Active() []*session.Session { return d.sessions }

type captureAudit struct {
	entries []AuditEntry
}

func (c *captureAudit) WriteAudit(e AuditEntry) error {
	c.entries = append(c.entries, e)
	return nil
}

type sweepEnv struct {
	dir    *fakeDir
	ledger *mapLedger
	bans   *fakeBans
	sink   *fakeSink
	audit  *captureAudit
	sw     *Sweeper
}

func newSweepEnv(sessions ...*session.Session) *sweepEnv {
	env := &sweepEnv{
		dir:    &fakeDir{sessions: sessions},
		ledger: newMapLedger(),
		bans:   &fakeBans{},
		sink:   &fakeSink{},
		audit:  &captureAudit{},
	}
	env.sw = NewSweeper(SweeperConfig{
		Directory: env.dir,
		Ledger:    env.ledger,
		Policy:    NewPolicy([]int{3988}, 9999),
		Enforcer:  NewEnforcer(env.bans, env.sink, "", "", nil),
		Sink:      env.sink,
		Catalogs:  nil,
		Audit:     env.audit,
	})
	return env
}

func boundSession(index int, slots int, username string) *session.Session {
	s := session.New(index, "10.0.0.1", slots)
	s.BindAccount(&session.Account{ID: index + 1, Username: username, UUID: "uuid-" + username})
	return s
}

func TestSweep_PurgesUntrackedSlot(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 50, Stack: 10, Name: "Magic Mirror"})
	env := newSweepEnv(sess)

	env.sw.Sweep()

	if got, _ := sess.Slot(0); got.Active() {
		t.Fatalf("slot 0 not cleared: %+v", got)
	}

	warns := env.sink.byKind("warning")
	if len(warns) != 1 || warns[0].Text != "Untracked item removed: Magic Mirror" {
		t.Fatalf("warnings=%+v", warns)
	}

	// The whole inventory range resyncs, not only the changed slot.
	updates := env.sink.byKind("slot")
	if len(updates) != 4 {
		t.Fatalf("slot updates=%d, want 4", len(updates))
	}
	for i, u := range updates {
		if u.Index != 0 || u.Slot != i {
			t.Fatalf("update %d=%+v", i, u)
		}
	}
	if updates[0].Item.Active() {
		t.Fatalf("slot 0 update still carries the purged item: %+v", updates[0].Item)
	}

	if len(env.bans.rows) != 0 {
		t.Fatalf("clean session banned")
	}
	if len(env.audit.entries) != 1 || env.audit.entries[0].Action != "purge" {
		t.Fatalf("audit=%+v", env.audit.entries)
	}
}

func TestSweep_TrackedSlotUntouched(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 50, Stack: 10})
	env := newSweepEnv(sess)
	if err := env.ledger.Record(ledger.ProvenanceRecord{UID: "uid", ItemID: 50, Stack: 10, Source: SourceDrop}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	env.sw.Sweep()

	if got, _ := sess.Slot(0); !got.Active() {
		t.Fatalf("tracked slot cleared")
	}
	if len(env.sink.msgs) != 0 {
		t.Fatalf("messages for a clean sweep: %+v", env.sink.msgs)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 50, Stack: 10})
	env := newSweepEnv(sess)

	env.sw.Sweep()
	after := len(env.sink.msgs)

	env.sw.Sweep()
	if len(env.sink.msgs) != after {
		t.Fatalf("second sweep produced actions: %+v", env.sink.msgs[after:])
	}
	if len(env.bans.rows) != 0 {
		t.Fatalf("idempotent sweep banned")
	}
}

func TestSweep_IllegalItemBansOnce(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(2, session.InventorySlot{ItemID: 3988, Stack: 1, Name: "Alpha Bug Net"})
	env := newSweepEnv(sess)
	// A legitimately dropped copy of the banned item: ledger-tracked, so the
	// purge pass leaves it alone while the ban check still fires.
	if err := env.ledger.Record(ledger.ProvenanceRecord{UID: "uid", ItemID: 3988, Stack: 1, Source: SourceDrop}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	env.sw.Sweep()
	if len(env.bans.rows) != 1 {
		t.Fatalf("rows=%d, want 1", len(env.bans.rows))
	}
	if got, _ := sess.Slot(2); !got.Active() {
		t.Fatalf("tracked slot purged")
	}

	// Player still connected on the next tick: ban is re-requested but the
	// existence check prevents a second row.
	env.sw.Sweep()
	if len(env.bans.rows) != 1 {
		t.Fatalf("rows after second sweep=%d, want 1", len(env.bans.rows))
	}
	if env.bans.lookups != 2 {
		t.Fatalf("lookups=%d, want 2", env.bans.lookups)
	}
}

func TestSweep_StackOverflowIndependentOfLedger(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 2, Stack: 10000})
	env := newSweepEnv(sess)
	if err := env.ledger.Record(ledger.ProvenanceRecord{UID: "uid", ItemID: 2, Stack: 10000, Source: SourceDrop}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	env.sw.Sweep()

	if len(env.bans.rows) != 1 {
		t.Fatalf("overstack not banned despite ledger record")
	}
	if got, _ := sess.Slot(0); !got.Active() {
		t.Fatalf("tracked overstack purged")
	}
}

func TestSweep_StoreErrorFailsSafe(t *testing.T) {
	sess := boundSession(0, 4, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 50, Stack: 10})
	env := newSweepEnv(sess)
	env.ledger.err = errors.New("db locked")

	env.sw.Sweep()

	if got, _ := sess.Slot(0); !got.Active() {
		t.Fatalf("slot purged on inconclusive evidence")
	}
	if len(env.sink.msgs) != 0 {
		t.Fatalf("messages on inconclusive sweep: %+v", env.sink.msgs)
	}
}

func TestSweep_SkipsAnonymousAndInactive(t *testing.T) {
	anon := session.New(0, "10.0.0.1", 4)
	anon.SetSlot(0, session.InventorySlot{ItemID: 3988, Stack: 1})

	gone := boundSession(1, 4, "left")
	gone.SetSlot(0, session.InventorySlot{ItemID: 3988, Stack: 1})
	gone.SetActive(false)

	env := newSweepEnv(anon, gone)
	env.sw.Sweep()

	if len(env.bans.rows) != 0 || len(env.sink.msgs) != 0 {
		t.Fatalf("acted on anonymous/inactive sessions: rows=%d msgs=%d", len(env.bans.rows), len(env.sink.msgs))
	}
	if got, _ := anon.Slot(0); !got.Active() {
		t.Fatalf("anonymous inventory mutated")
	}
}

func TestSweep_ItemNameFallback(t *testing.T) {
	sess := boundSession(0, 2, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 50, Stack: 10})
	env := newSweepEnv(sess)

	env.sw.Sweep()

	warns := env.sink.byKind("warning")
	if len(warns) != 1 || warns[0].Text != "Untracked item removed: item #50" {
		t.Fatalf("warnings=%+v", warns)
	}
}

func TestSweep_CheaterStillPurged(t *testing.T) {
	// Ban and purge are independent: an untracked illegal item triggers
	// both in the same pass.
	sess := boundSession(0, 2, "ruff")
	sess.SetSlot(0, session.InventorySlot{ItemID: 3988, Stack: 1, Name: "Alpha Bug Net"})
	env := newSweepEnv(sess)

	env.sw.Sweep()

	if len(env.bans.rows) != 1 {
		t.Fatalf("cheater not banned")
	}
	if got, _ := sess.Slot(0); got.Active() {
		t.Fatalf("untracked illegal item not purged")
	}

	var actions []string
	for _, e := range env.audit.entries {
		actions = append(actions, e.Action)
	}
	if len(actions) != 2 || actions[0] != "ban" || actions[1] != "purge" {
		t.Fatalf("audit actions=%v", actions)
	}
}
