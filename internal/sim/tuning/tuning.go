package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ScanIntervalMs int `yaml:"scan_interval_ms"`
	MaxStackLimit  int `yaml:"max_stack_limit"`

	// Item kinds unobtainable through normal play. Any active slot holding
	// one of these marks the whole session as cheating.
	IllegalItems []int `yaml:"illegal_items"`

	InventorySlots int `yaml:"inventory_slots"`

	LedgerDBPath string `yaml:"ledger_db_path"`
	BansDBPath   string `yaml:"bans_db_path"`

	BanReason string `yaml:"ban_reason"`
	BanOrigin string `yaml:"ban_origin"`
}

func Defaults() Tuning {
	return Tuning{
		ScanIntervalMs: 1500,
		MaxStackLimit:  9999,
		IllegalItems:   []int{3988},
		InventorySlots: 59,
		LedgerDBPath:   "./data/item_tracker.sqlite",
		BansDBPath:     "./data/accounts.sqlite",
		BanReason:      "Item hacks",
		BanOrigin:      "Warden",
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("warden.yaml: %w", err)
	}
	if t.ScanIntervalMs <= 0 {
		return t, fmt.Errorf("warden.yaml: scan_interval_ms must be positive, got %d", t.ScanIntervalMs)
	}
	if t.MaxStackLimit <= 0 {
		return t, fmt.Errorf("warden.yaml: max_stack_limit must be positive, got %d", t.MaxStackLimit)
	}
	return t, nil
}
