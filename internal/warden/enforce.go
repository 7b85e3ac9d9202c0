package warden

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"warden.ai/internal/sim/session"
)

var banBroadcastColor = [3]uint8{205, 0, 55}

// permanent expiry; the host treats anything this far out as a lifetime ban.
var banForever = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Enforcer is a thin gate over the host ban store. It guarantees at most one
// ban row per username no matter how many sweeps flag the same offender
// before the host disconnects them.
type Enforcer struct {
	bans BanStore
	sink Broadcaster
	log  *log.Logger

	reason string
	origin string

	mu sync.Mutex
}

func NewEnforcer(bans BanStore, sink Broadcaster, reason, origin string, logger *log.Logger) *Enforcer {
	if reason == "" {
		reason = "Item hacks"
	}
	if origin == "" {
		origin = "Warden"
	}
	return &Enforcer{bans: bans, sink: sink, reason: reason, origin: origin, log: logger}
}

// Ban inserts a ban for the account unless one already exists. Failures are
// logged and swallowed; a failed ban must never abort the running sweep, and
// the offender is re-flagged on the next tick anyway.
func (e *Enforcer) Ban(ip, username string, acct *session.Account) {
	if strings.TrimSpace(username) == "" || acct == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.bans.ExistingBan(username)
	if err != nil {
		e.logf("enforce: %v", err)
		return
	}
	if exists {
		return
	}

	e.logf("enforce: cheater detected, banning %s (%s)", username, ip)
	if err := e.bans.InsertBan(acct.UUID, username, e.reason, e.origin, time.Now(), banForever); err != nil {
		e.logf("enforce: %v", err)
		return
	}

	e.sink.BroadcastAll(
		fmt.Sprintf("# # # %s was banned due to item hacks... Goodbye! # # #", username),
		banBroadcastColor,
	)
}

func (e *Enforcer) logf(format string, args ...any) {
	if e.log != nil {
		e.log.Printf(format, args...)
	}
}
