package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"

	"radar/internal/domain/constants"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	// TestRoutes configuration for testing endpoints
	TestRoutes *TestRoutesConfig `json:"testRoutes" yaml:"testRoutes"`

	Routing *RoutingConfig `json:"routing" yaml:"routing"`

	PMTiles *PMTilesConfig `json:"pmTiles" yaml:"pmTiles"`

	Dispatch *DispatchConfig `json:"dispatch" yaml:"dispatch"`

	Zones *ZonesConfig `json:"zones" yaml:"zones"`

	Geocoder *GeocoderConfig `json:"geocoder" yaml:"geocoder"`

	PubSub *PubSubConfig `json:"pubSub" yaml:"pubSub"`
}

// PubSubConfig selects and configures the dispatch event publisher. A nil
// or empty Provider falls back to a no-op publisher.
type PubSubConfig struct {
	Provider      constants.PubSubProvider `json:"provider" yaml:"provider"`
	LocalEndpoint string                   `json:"localEndpoint" yaml:"localEndpoint"`
	ProjectID     string                   `json:"projectID" yaml:"projectID"`
	TopicID       string                   `json:"topicID" yaml:"topicID"`
}

// RoutingConfig configures the preloaded CH road-network graph. The
// on-demand fallback for coordinates outside it is configured separately,
// in PMTilesConfig.
type RoutingConfig struct {
	Enabled                   bool    `json:"enabled" yaml:"enabled"`
	DataPath                  string  `json:"dataPath" yaml:"dataPath"`
	MaxSnapDistanceKm         float64 `json:"maxSnapDistanceKm" yaml:"maxSnapDistanceKm"`
	DefaultSpeedKmh           float64 `json:"defaultSpeedKmh" yaml:"defaultSpeedKmh"`
	MaxQueryRadiusKm          float64 `json:"maxQueryRadiusKm" yaml:"maxQueryRadiusKm"`
	OneToManyWorkers          int     `json:"oneToManyWorkers" yaml:"oneToManyWorkers"`
	PreFilterRadiusMultiplier float64 `json:"preFilterRadiusMultiplier" yaml:"preFilterRadiusMultiplier"`
	GridCellSizeKm            float64 `json:"gridCellSizeKm" yaml:"gridCellSizeKm"`
}

// PMTilesConfig configures the on-demand vector-tile-backed routing
// fallback (spec §4.1/§5b's "graph_for_area" beyond the preloaded CH
// bounding box): fetch one or more map tiles covering a query area, parse
// the road layer, and build a small routing graph for it on demand.
type PMTilesConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Source    string `json:"source" yaml:"source"`
	RoadLayer string `json:"roadLayer" yaml:"roadLayer"`
	ZoomLevel int    `json:"zoomLevel" yaml:"zoomLevel"`
}

// DispatchConfig configures the batch loop and the scorer's weight vector.
type DispatchConfig struct {
	Weights struct {
		Distance      float64 `json:"distance" yaml:"distance"`
		Capacity      float64 `json:"capacity" yaml:"capacity"`
		Urgency       float64 `json:"urgency" yaml:"urgency"`
		Compatibility float64 `json:"compatibility" yaml:"compatibility"`
		Performance   float64 `json:"performance" yaml:"performance"`
		Interference  float64 `json:"interference" yaml:"interference"`
	} `json:"weights" yaml:"weights"`

	BatchIntervalSeconds int `json:"batchIntervalSeconds" yaml:"batchIntervalSeconds"`
	BatchTimeBudgetMs    int `json:"batchTimeBudgetMs" yaml:"batchTimeBudgetMs"`
	ExactSequenceMaxN    int `json:"exactSequenceMaxN" yaml:"exactSequenceMaxN"`

	// FastModeK caps the number of nearest-by-distance candidates the single
	// dispatch pipeline scores when fast_mode is requested, trading
	// exhaustiveness for latency.
	FastModeK int `json:"fastModeK" yaml:"fastModeK"`
}

// ZonesConfig points at the zone-partition file used by the §4.4 pre-filter.
type ZonesConfig struct {
	ConfigPath string `json:"configPath" yaml:"configPath"`
}

// GeocoderConfig configures the outbound address-resolution client.
type GeocoderConfig struct {
	BaseURL           string        `json:"baseURL" yaml:"baseURL"`
	TimeoutMs         int           `json:"timeoutMs" yaml:"timeoutMs"`
	RateLimitPerSec   float64       `json:"rateLimitPerSec" yaml:"rateLimitPerSec"`
	RateLimitBurst    int           `json:"rateLimitBurst" yaml:"rateLimitBurst"`
	CacheTTL          time.Duration `json:"cacheTTL" yaml:"cacheTTL"`
}

type Log struct {
	Pretty       bool          `json:"pretty" yaml:"pretty"`
	Level        string        `json:"level" yaml:"level"`
	Path         string        `json:"path" yaml:"path"`
	MaxAge       time.Duration `json:"maxAge" yaml:"maxAge"`
	RotationTime time.Duration `json:"rotationTime" yaml:"rotationTime"`
}

// TestRoutesConfig defines configuration for testing endpoints
type TestRoutesConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, fmt.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read %s config failed: %w", currEnv, err)
	}

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to env.var.name
			key := strings.ReplaceAll(strings.ToLower(k), "_", ".")

			return key, v
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load env variables failed: %w", err)
	}

	// Unmarshal into the config struct
	if err := koanfInstance.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s config failed: %w", currEnv, err)
	}

	return cfg, nil
}

func New() (*Config, error) {
	return LoadWithEnv[Config]("config", "config", "../connfig", "../../config")
}
