// Package clinic assembles the dashboard's table configurations.
package clinic

import (
	"fmt"
	"slices"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/appointment"
	"github.com/Alijeyrad/dentaldesk/internal/service/denture"
	"github.com/Alijeyrad/dentaldesk/internal/service/inventory"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/service/treatment"
	"github.com/Alijeyrad/dentaldesk/internal/table"
)

type Options struct {
	RecentWindowDays int
	PhoneRegion      string
}

func OptionsFromConfig(c config.DashboardConfig) Options {
	return Options{RecentWindowDays: c.RecentWindowDays, PhoneRegion: c.PhoneRegion}
}

// Catalog holds one validated table configuration per entity, in menu order.
type Catalog struct {
	order   []string
	configs map[string]table.Config
}

func NewCatalog(opts Options) (*Catalog, error) {
	region := opts.PhoneRegion
	if region == "" {
		region = "US"
	}
	cfgs := []table.Config{
		appointment.Table(),
		patient.Table(opts.RecentWindowDays, region),
		denture.Table(),
		inventory.Table(),
		treatment.Table(opts.RecentWindowDays),
	}

	c := &Catalog{configs: make(map[string]table.Config, len(cfgs))}
	for _, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.order = append(c.order, cfg.Entity)
		c.configs[cfg.Entity] = cfg
	}
	return c, nil
}

// Config returns the configuration of entity.
func (c *Catalog) Config(entity string) (table.Config, error) {
	cfg, ok := c.configs[entity]
	if !ok {
		return table.Config{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return cfg, nil
}

// Entities lists the entity names in menu order.
func (c *Catalog) Entities() []string {
	return slices.Clone(c.order)
}
