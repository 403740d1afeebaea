package core

import (
	"context"
	"strings"

	"rentledger/pkg/domain"
)

// BuildingInput carries the editable identity fields of a building.
type BuildingInput struct {
	Name    string
	Type    string
	Address string
}

// RegisterBuilding creates a building. Services and map start empty unless
// supplied.
func (s *Service) RegisterBuilding(ctx context.Context, in BuildingInput, services BuildingServices, mapURL string) (Building, Result, error) {
	var created Building
	res, err := s.run(ctx, mutation{op: "register_building", entity: EntityBuilding, action: ActionCreate}, func(tx Transaction) (string, error) {
		if err := requireText("name", in.Name); err != nil {
			return "", err
		}
		if err := ensureBuildingNameFree(tx, in.Name, ""); err != nil {
			return "", err
		}
		var err error
		created, err = tx.CreateBuilding(Building{
			Name:     strings.TrimSpace(in.Name),
			Type:     strings.TrimSpace(in.Type),
			Address:  strings.TrimSpace(in.Address),
			Services: cleanServices(services),
			MapURL:   strings.TrimSpace(mapURL),
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateBuilding edits name, type and address.
func (s *Service) UpdateBuilding(ctx context.Context, id string, in BuildingInput) (Building, Result, error) {
	var updated Building
	res, err := s.run(ctx, mutation{op: "update_building", entity: EntityBuilding, action: ActionUpdate}, func(tx Transaction) (string, error) {
		if err := requireText("name", in.Name); err != nil {
			return id, err
		}
		if err := ensureBuildingNameFree(tx, in.Name, id); err != nil {
			return id, err
		}
		var err error
		updated, err = tx.UpdateBuilding(id, func(b *Building) error {
			b.Name = strings.TrimSpace(in.Name)
			b.Type = strings.TrimSpace(in.Type)
			b.Address = strings.TrimSpace(in.Address)
			return nil
		})
		return id, err
	})
	return updated, res, err
}

// UpdateBuildingServices replaces the utility accounts of a building.
func (s *Service) UpdateBuildingServices(ctx context.Context, id string, services BuildingServices) (Building, Result, error) {
	var updated Building
	res, err := s.run(ctx, mutation{op: "update_building_services", entity: EntityBuilding, action: ActionUpdate}, func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateBuilding(id, func(b *Building) error {
			b.Services = cleanServices(services)
			return nil
		})
		return id, err
	})
	return updated, res, err
}

// UpdateBuildingMap stores the map link of a building. Use EmbedMapURL to
// render it.
func (s *Service) UpdateBuildingMap(ctx context.Context, id, mapURL string) (Building, Result, error) {
	var updated Building
	res, err := s.run(ctx, mutation{op: "update_building_map", entity: EntityBuilding, action: ActionUpdate}, func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateBuilding(id, func(b *Building) error {
			b.MapURL = strings.TrimSpace(mapURL)
			return nil
		})
		return id, err
	})
	return updated, res, err
}

func cleanServices(in BuildingServices) BuildingServices {
	return BuildingServices{
		WaterAccount:     strings.TrimSpace(in.WaterAccount),
		InternetAccount:  strings.TrimSpace(in.InternetAccount),
		InternetProvider: strings.TrimSpace(in.InternetProvider),
		GasAccount:       strings.TrimSpace(in.GasAccount),
		InternetPrice:    sanitizePrice(in.InternetPrice),
	}
}

// ensureBuildingNameFree scans every building; exceptID excludes the record
// being edited.
func ensureBuildingNameFree(v TransactionView, name, exceptID string) error {
	key := domain.NormalizeName(name)
	for _, b := range v.ListBuildings() {
		if b.ID == exceptID {
			continue
		}
		if domain.NormalizeName(b.Name) == key {
			return domain.ConflictError{
				Reason:   domain.ErrDuplicateName,
				Entity:   EntityBuilding,
				EntityID: b.ID,
				Message:  "a building named " + strings.TrimSpace(name) + " already exists",
			}
		}
	}
	return nil
}
