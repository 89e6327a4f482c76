// Package zone loads the zone-partition configuration used by the §4.4
// geographic pre-filter from a YAML file, independent of the main config
// (operators redeploy zone boundaries without a full config/service
// restart cycle).
package zone

import (
	"os"

	"radar/config"
	"radar/internal/domain/entity"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type zoneFile struct {
	Zones []entity.Zone `yaml:"zones"`
}

// Load reads cfg.ConfigPath and returns the parsed ZoneSet. An empty or
// unset ConfigPath yields an empty ZoneSet, which disables the pre-filter
// for every call (every order location falls outside every zone).
func Load(cfg *config.ZonesConfig) (entity.ZoneSet, error) {
	if cfg == nil || cfg.ConfigPath == "" {
		return entity.ZoneSet{}, nil
	}

	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return entity.ZoneSet{}, errors.Wrap(err, "read zones config file")
	}

	var parsed zoneFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return entity.ZoneSet{}, errors.Wrap(err, "unmarshal zones config file")
	}

	return entity.ZoneSet{Zones: parsed.Zones}, nil
}
