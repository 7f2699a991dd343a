package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ---- RMMV Data Structures ----

type SystemData struct {
	GameTitle    string `json:"gameTitle"`
	CurrencyUnit string `json:"currencyUnit"`
}

// Item is one entry of Items.json.
type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconIndex   int    `json:"iconIndex"`
	ItypeID     int    `json:"itypeId"` // 1=regular,2=key,3=hidden A,4=hidden B
	Price       int    `json:"price"`
	Consumable  bool   `json:"consumable"`
	Note        string `json:"note"`
}

type Weapon struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconIndex   int    `json:"iconIndex"`
	Price       int    `json:"price"`
	WtypeID     int    `json:"wtypeId"`
	Note        string `json:"note"`
}

type Armor struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconIndex   int    `json:"iconIndex"`
	Price       int    `json:"price"`
	EtypeID     int    `json:"etypeId"` // 1=shield,2=helmet,3=body,4=accessory
	AtypeID     int    `json:"atypeId"`
	Note        string `json:"note"`
}

// ---- ResourceLoader ----

// ResourceLoader reads and holds the RMMV data files that define items.
type ResourceLoader struct {
	DataPath string
	System   *SystemData
	Items    []*Item
	Weapons  []*Weapon
	Armors   []*Armor
}

// NewLoader creates a ResourceLoader for the given RMMV data directory.
func NewLoader(dataPath string) *ResourceLoader {
	return &ResourceLoader{DataPath: dataPath}
}

// Load reads all item data files. System.json is optional.
func (rl *ResourceLoader) Load() error {
	loaders := []func() error{
		rl.loadItems,
		rl.loadWeapons,
		rl.loadArmors,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}
	if err := rl.loadSystem(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (rl *ResourceLoader) path(file string) string {
	return filepath.Join(rl.DataPath, file)
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	var arr []*T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return arr, nil
}

func loadJSONObject[T any](path string, out *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("resource: parse %s: %w", path, err)
	}
	return nil
}

func (rl *ResourceLoader) loadSystem() error {
	rl.System = &SystemData{}
	return loadJSONObject(rl.path("System.json"), rl.System)
}

func (rl *ResourceLoader) loadItems() error {
	var err error
	rl.Items, err = loadJSONArray[Item](rl.path("Items.json"))
	return err
}

func (rl *ResourceLoader) loadWeapons() error {
	var err error
	rl.Weapons, err = loadJSONArray[Weapon](rl.path("Weapons.json"))
	return err
}

func (rl *ResourceLoader) loadArmors() error {
	var err error
	rl.Armors, err = loadJSONArray[Armor](rl.path("Armors.json"))
	return err
}
