package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	duration "github.com/ChannelMeter/iso8601duration"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// S+U Warschauer Str.
	DefaultStationID = "900120003"

	DefaultRefreshInterval    = "PT20S"
	DefaultRotationInterval   = "PT10S"
	DefaultFetchTimeout       = "PT5S"
	DefaultPreviewInterval    = "PT15M"
	DefaultDisplayCap         = 3
	DefaultExcludeDestination = "Warschauer"
	DefaultVBBBaseURL         = "https://v6.vbb.transport.rest"
)

var stationIDPattern = regexp.MustCompile(`^[0-9]{6,12}$`)

// Config is the raw configuration as read from the YAML file and the
// environment. Durations are ISO 8601 strings; every key is optional.
type Config struct {
	StationID          string `yaml:"station_id"`
	RefreshInterval    string `yaml:"refresh_interval"`
	RotationInterval   string `yaml:"rotation_interval"`
	DisplayCap         int    `yaml:"display_cap"`
	FetchTimeout       string `yaml:"fetch_timeout"`
	PreviewInterval    string `yaml:"preview_interval"`
	ExcludeDestination string `yaml:"exclude_destination"`
	VBBBaseURL         string `yaml:"vbb_base_url"`
	Listen             string `yaml:"listen"`
	RedisHost          string `yaml:"redis_host"`
}

// Settings is the validated runtime view of Config. A Settings value only
// exists after validation has passed; nothing downstream revalidates.
type Settings struct {
	StationID          string
	RefreshInterval    time.Duration
	RotationInterval   time.Duration
	DisplayCap         int
	FetchTimeout       time.Duration
	PreviewInterval    time.Duration
	ExcludeDestination string
	VBBBaseURL         string
	Listen             string
	RedisHost          string
}

// Load reads the YAML configuration file. An empty path yields an empty
// Config, so running without a file falls through to defaults.
func Load(path string) (*Config, error) {
	c := Config{}

	if path == "" {
		return &c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read configuration file `%s`", path)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "cannot parse configuration file `%s`", path)
	}

	return &c, nil
}

// ApplyEnv overrides file values with BOARD_DISPLAY_* environment variables
func (c *Config) ApplyEnv() error {
	if v, exists := os.LookupEnv("BOARD_DISPLAY_STATION_ID"); exists && v != "" {
		c.StationID = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_REFRESH_INTERVAL"); exists && v != "" {
		c.RefreshInterval = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_ROTATION_INTERVAL"); exists && v != "" {
		c.RotationInterval = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_CAP"); exists && v != "" {
		displayCap, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "BOARD_DISPLAY_CAP value `%s` is not valid", v)
		}
		c.DisplayCap = displayCap
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_FETCH_TIMEOUT"); exists && v != "" {
		c.FetchTimeout = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_PREVIEW_INTERVAL"); exists && v != "" {
		c.PreviewInterval = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_EXCLUDE_DESTINATION"); exists && v != "" {
		c.ExcludeDestination = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_VBB_BASE_URL"); exists && v != "" {
		c.VBBBaseURL = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_LISTEN"); exists && v != "" {
		c.Listen = v
	}
	if v, exists := os.LookupEnv("BOARD_DISPLAY_REDIS_HOST"); exists && v != "" {
		c.RedisHost = v
	}
	return nil
}

// Resolve fills in defaults and validates the configuration. Violations
// are fatal at startup; the scheduler relies on never seeing them.
func (c *Config) Resolve() (*Settings, error) {
	s := Settings{
		StationID:          c.StationID,
		DisplayCap:         c.DisplayCap,
		ExcludeDestination: c.ExcludeDestination,
		VBBBaseURL:         c.VBBBaseURL,
		Listen:             c.Listen,
		RedisHost:          c.RedisHost,
	}

	if s.StationID == "" {
		s.StationID = DefaultStationID
	}
	if !stationIDPattern.MatchString(s.StationID) {
		return nil, errors.Errorf("station id `%s` is not valid", s.StationID)
	}

	if s.DisplayCap == 0 {
		s.DisplayCap = DefaultDisplayCap
	}
	if s.DisplayCap < 1 {
		return nil, errors.Errorf("display cap `%d` must be greater than 0", c.DisplayCap)
	}

	if s.ExcludeDestination == "" {
		s.ExcludeDestination = DefaultExcludeDestination
	}
	if s.VBBBaseURL == "" {
		s.VBBBaseURL = DefaultVBBBaseURL
	}

	var err error
	if s.RefreshInterval, err = resolveInterval("refresh_interval", c.RefreshInterval, DefaultRefreshInterval); err != nil {
		return nil, err
	}
	if s.RotationInterval, err = resolveInterval("rotation_interval", c.RotationInterval, DefaultRotationInterval); err != nil {
		return nil, err
	}
	if s.FetchTimeout, err = resolveInterval("fetch_timeout", c.FetchTimeout, DefaultFetchTimeout); err != nil {
		return nil, err
	}
	if s.PreviewInterval, err = resolveInterval("preview_interval", c.PreviewInterval, DefaultPreviewInterval); err != nil {
		return nil, err
	}

	return &s, nil
}

func resolveInterval(name string, value string, fallback string) (time.Duration, error) {
	if value == "" {
		value = fallback
	}

	d, err := duration.FromString(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s value `%s` is not a valid ISO8601 duration", name, value)
	}

	resolved := d.ToDuration()
	if resolved <= 0 {
		return 0, errors.Errorf("%s value `%s` must be greater than 0", name, value)
	}

	return resolved, nil
}
