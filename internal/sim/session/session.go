// Package session is the directory of connected players. Sessions are owned
// by the transport layer; the sweeper only reads them and clears slots.
package session

import "sync"

// Account is the bound login identity for a session. Sessions without an
// account (anonymous connections) are skipped by enforcement.
type Account struct {
	ID       int
	Username string
	UUID     string
}

// InventorySlot is one slot of a player's inventory. ItemID 0 means empty.
type InventorySlot struct {
	ItemID int
	Stack  int
	Prefix int
	Name   string
}

// Active reports whether the slot holds a real item.
func (s InventorySlot) Active() bool {
	return s.ItemID != 0 && s.Stack > 0
}

type Session struct {
	Index int
	IP    string

	mu      sync.Mutex
	active  bool
	account *Account
	slots   []InventorySlot

	// Outbound message channel drained by the transport writer goroutine.
	// Nil for sessions created outside the transport (tests).
	Out chan []byte
}

func New(index int, ip string, slots int) *Session {
	return &Session{
		Index:  index,
		IP:     ip,
		active: true,
		slots:  make([]InventorySlot, slots),
	}
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Session) SetActive(v bool) {
	s.mu.Lock()
	s.active = v
	s.mu.Unlock()
}

func (s *Session) Account() *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) BindAccount(a *Account) {
	s.mu.Lock()
	s.account = a
	s.mu.Unlock()
}

// Slots returns a copy of the inventory for classification. The copy keeps
// the policy pure: clearing goes through ClearSlot, never through the copy.
func (s *Session) Slots() []InventorySlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InventorySlot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *Session) Slot(i int) (InventorySlot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.slots) {
		return InventorySlot{}, false
	}
	return s.slots[i], true
}

func (s *Session) SlotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Session) SetSlot(i int, slot InventorySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.slots) {
		return
	}
	s.slots[i] = slot
}

// ClearSlot resets a slot to the empty state.
func (s *Session) ClearSlot(i int) {
	s.SetSlot(i, InventorySlot{})
}
