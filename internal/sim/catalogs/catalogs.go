package catalogs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

type Catalogs struct {
	Items ItemCatalog
}

type ItemCatalog struct {
	Defs map[int]ItemDef
}

type ItemDef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[int]ItemDef{}
	for _, d := range defs {
		if d.ID == 0 {
			return fmt.Errorf("items.json: item id 0 is reserved for the empty slot")
		}
		out.Defs[d.ID] = d
	}
	return nil
}

// ItemName resolves a display name for user-facing messages. Unknown ids get
// a numeric fallback so a slot is still nameable in warnings.
func (c *Catalogs) ItemName(id int) string {
	if c != nil {
		if d, ok := c.Items.Defs[id]; ok && d.Name != "" {
			return d.Name
		}
	}
	return "item #" + strconv.Itoa(id)
}
