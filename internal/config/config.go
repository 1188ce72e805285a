package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScope  = "Files.Read offline_access"
	DefaultTenant = "consumers"

	defaultFolderPrefix = "wander-to-wonder"
	defaultMaxItems     = 50
	defaultMaxDepth     = 5
	defaultDataDir      = "data"
)

type GraphConfig struct {
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
	RefreshToken string `yaml:"-"`
	Tenant       string `yaml:"tenant"`
	Scope        string `yaml:"scope"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"-"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

type Config struct {
	FolderPrefix string `yaml:"folder_prefix"`
	MaxItems     int    `yaml:"max_items"`
	MaxDepth     int    `yaml:"max_depth"`
	Overwrite    bool   `yaml:"overwrite"`
	DataDir      string `yaml:"data_dir"`
	TempDir      string `yaml:"temp_dir"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`

	// TripMap is the raw trip-map JSON. The --map-json flag and the
	// TRIP_SHARE_URLS_JSON variable override the file value in that order.
	TripMap string `yaml:"trip_map"`

	Graph      GraphConfig      `yaml:"graph"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
}

func (c *Config) SetDefaults() {
	c.FolderPrefix = defaultFolderPrefix
	c.MaxItems = defaultMaxItems
	c.MaxDepth = defaultMaxDepth
	c.DataDir = defaultDataDir
	c.TempDir = os.TempDir()
	c.LogLevel = "info"
	c.Graph.Tenant = DefaultTenant
	c.Graph.Scope = DefaultScope
}

// Load reads the optional YAML config file and overlays credentials and the
// trip map from the environment. All environment access happens here; nothing
// deeper in the call graph reads ambient state.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
		}
	}

	cfg.loadEnv()

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) loadEnv() {
	c.Graph.ClientID = envOr("MS_CLIENT_ID", c.Graph.ClientID)
	c.Graph.ClientSecret = envOr("MS_CLIENT_SECRET", c.Graph.ClientSecret)
	c.Graph.RefreshToken = envOr("MS_REFRESH_TOKEN", c.Graph.RefreshToken)
	c.Graph.Tenant = envOr("MS_TENANT", c.Graph.Tenant)
	c.Graph.Scope = envOr("MS_SCOPE", c.Graph.Scope)

	c.Cloudinary.CloudName = envOr("CLOUDINARY_CLOUD_NAME", c.Cloudinary.CloudName)
	c.Cloudinary.APIKey = envOr("CLOUDINARY_API_KEY", c.Cloudinary.APIKey)
	c.Cloudinary.APISecret = envOr("CLOUDINARY_API_SECRET", c.Cloudinary.APISecret)

	c.TripMap = envOr("TRIP_SHARE_URLS_JSON", c.TripMap)
}

func envOr(name, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}

	return fallback
}

// Validate checks the credentials required before any network call is made.
func (c *Config) Validate() error {
	required := map[string]string{
		"MS_CLIENT_ID":          c.Graph.ClientID,
		"MS_REFRESH_TOKEN":      c.Graph.RefreshToken,
		"CLOUDINARY_CLOUD_NAME": c.Cloudinary.CloudName,
		"CLOUDINARY_API_KEY":    c.Cloudinary.APIKey,
		"CLOUDINARY_API_SECRET": c.Cloudinary.APISecret,
	}

	var missing []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return nil
}
