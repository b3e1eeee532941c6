package indexer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/skedroski/glen-ellyn-chatbot/internal/domain"
)

// rawBuilding's fields are all required; a partially typed record set
// is unsafe to index, so any absent field fails the whole load.
type rawBuilding struct {
	Address              *string `json:"address"`
	Year                 *int    `json:"year"`
	BuildingDescription  *string `json:"building_description"`
	BuildingUse          *string `json:"building_use"`
	Stories              *int    `json:"stories"`
	ConstructionMaterial *string `json:"construction_material"`
	Notes                *string `json:"notes"`
	MapSheet             *string `json:"map_sheet"`
}

// LoadBuildings reads a JSON array of building entries. A malformed
// document or a missing required field on any entry aborts the load.
func LoadBuildings(path string) ([]domain.BuildingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBuildings(data)
}

// ParseBuildings decodes and validates a building entry array.
func ParseBuildings(data []byte) ([]domain.BuildingRecord, error) {
	var raw []rawBuilding
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse building entries: %w", err)
	}
	entries := make([]domain.BuildingRecord, 0, len(raw))
	for i, r := range raw {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("building entry %d: %w", i, err)
		}
		entries = append(entries, domain.BuildingRecord{
			Address:              *r.Address,
			Year:                 *r.Year,
			BuildingDescription:  *r.BuildingDescription,
			BuildingUse:          *r.BuildingUse,
			Stories:              *r.Stories,
			ConstructionMaterial: *r.ConstructionMaterial,
			Notes:                *r.Notes,
			MapSheet:             *r.MapSheet,
		})
	}
	return entries, nil
}

func (r rawBuilding) validate() error {
	required := []struct {
		name string
		ok   bool
	}{
		{"address", r.Address != nil},
		{"year", r.Year != nil},
		{"building_description", r.BuildingDescription != nil},
		{"building_use", r.BuildingUse != nil},
		{"stories", r.Stories != nil},
		{"construction_material", r.ConstructionMaterial != nil},
		{"notes", r.Notes != nil},
		{"map_sheet", r.MapSheet != nil},
	}
	for _, f := range required {
		if !f.ok {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	return nil
}
