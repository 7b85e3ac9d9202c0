package warden

import "warden.ai/internal/sim/session"

// SourceDrop tags ledger rows created from item drop events.
const SourceDrop = "Drop"

// Policy classifies inventories. It holds only configuration; all inputs
// arrive per call, so classification is a pure function of the snapshot.
type Policy struct {
	illegal  map[int]struct{}
	maxStack int
}

func NewPolicy(illegalItems []int, maxStack int) *Policy {
	p := &Policy{
		illegal:  make(map[int]struct{}, len(illegalItems)),
		maxStack: maxStack,
	}
	for _, id := range illegalItems {
		p.illegal[id] = struct{}{}
	}
	return p
}

func (p *Policy) IsIllegalItem(itemID int) bool {
	_, ok := p.illegal[itemID]
	return ok
}

// IsCheater reports whether any active slot holds a deny-listed item or a
// stack above the legitimate ceiling. Short-circuits on the first hit; the
// ban decision is boolean, not itemized.
func (p *Policy) IsCheater(slots []session.InventorySlot) bool {
	for _, slot := range slots {
		if !slot.Active() {
			continue
		}
		if p.IsIllegalItem(slot.ItemID) {
			return true
		}
		if slot.Stack > p.maxStack {
			return true
		}
	}
	return false
}

// SlotUntracked reports whether a slot's exact (item, stack) combination has
// no ledger record. A stack of 50 is untracked even if a stack of 49 of the
// same item was recorded. Independent of the cheating classification.
func SlotUntracked(l Ledger, slot session.InventorySlot) (bool, error) {
	n, err := l.CountMatching(slot.ItemID, slot.Stack)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
