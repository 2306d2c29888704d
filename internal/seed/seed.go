// Package seed loads the static catalog (default categories and the
// achievement definitions) into a fresh database. The catalog is
// configuration, not logic; it ships embedded so the binary is
// self-contained.
package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"focusquest/internal/storage"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalog struct {
	Categories []struct {
		ID           string             `yaml:"id"`
		Name         string             `yaml:"name"`
		XPMultiplier float64            `yaml:"xp_multiplier"`
		StatWeights  map[string]float64 `yaml:"stat_weights"`
	} `yaml:"categories"`
	Achievements []struct {
		ID               string `yaml:"id"`
		Name             string `yaml:"name"`
		Category         string `yaml:"category"`
		Tier             string `yaml:"tier"`
		RequirementType  string `yaml:"requirement_type"`
		RequirementValue int    `yaml:"requirement_value"`
	} `yaml:"achievements"`
}

// Apply upserts the embedded catalog. Safe to run on every startup.
func Apply(ctx context.Context, db *sql.DB) error {
	var cat catalog
	if err := yaml.Unmarshal(catalogYAML, &cat); err != nil {
		return fmt.Errorf("parse seed catalog: %w", err)
	}

	categories := storage.NewCategoryRepo(db)
	for _, c := range cat.Categories {
		if err := categories.Upsert(ctx, storage.Category{
			ID:           c.ID,
			Name:         c.Name,
			XPMultiplier: c.XPMultiplier,
			StatWeights:  c.StatWeights,
		}); err != nil {
			return err
		}
	}

	achievements := storage.NewAchievementRepo(db)
	for _, a := range cat.Achievements {
		if err := achievements.Upsert(ctx, storage.Achievement{
			ID:               a.ID,
			Name:             a.Name,
			Category:         a.Category,
			Tier:             a.Tier,
			RequirementType:  a.RequirementType,
			RequirementValue: a.RequirementValue,
		}); err != nil {
			return err
		}
	}
	return nil
}
