// FilePath: internal/config/config.go
package config

import (
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blitt001/ha-opensensemap/internal/errors"
	"github.com/blitt001/ha-opensensemap/internal/models"
)

const (
	// DefaultUpdateInterval is the upload period used when none is configured.
	DefaultUpdateInterval = 300
	// MinUpdateInterval is the lowest accepted upload period in seconds.
	MinUpdateInterval = 60
)

// Box and sensor IDs on openSenseMap are 24-character hex strings.
var hexIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// Config holds all configuration for the service
type Config struct {
	Box        BoxConfig        `mapstructure:"box"`
	Sensors    SensorsConfig    `mapstructure:"sensors"`
	Source     SourceConfig     `mapstructure:"source"`
	Server     ServerConfig     `mapstructure:"server"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// BoxConfig identifies the target senseBox and how often to push to it.
type BoxConfig struct {
	BoxID          string `mapstructure:"box_id"`
	AccessToken    string `mapstructure:"access_token"`
	UpdateInterval int    `mapstructure:"update_interval"`
	DebugMode      bool   `mapstructure:"debug_mode"`
}

// SensorEntryConfig pairs a remote sensor ID with a local source reference
// such as "redis://sensor.outdoor.temperature" or "mqtt://home/pm25".
type SensorEntryConfig struct {
	SensorID string `mapstructure:"sensor_id"`
	Source   string `mapstructure:"source"`
}

// SensorsConfig holds the five supported measurement channels. Any subset
// may be configured, but an entry must be complete to count.
type SensorsConfig struct {
	PM25        SensorEntryConfig `mapstructure:"pm25"`
	PM10        SensorEntryConfig `mapstructure:"pm10"`
	Temperature SensorEntryConfig `mapstructure:"temperature"`
	Humidity    SensorEntryConfig `mapstructure:"humidity"`
	Pressure    SensorEntryConfig `mapstructure:"pressure"`
}

// Mapping returns the sensor configuration as an ordered mapping, in the
// fixed kind order pm25, pm10, temperature, humidity, pressure.
func (s SensorsConfig) Mapping() models.SensorMapping {
	entries := map[models.MeasurementKind]SensorEntryConfig{
		models.PM25:        s.PM25,
		models.PM10:        s.PM10,
		models.Temperature: s.Temperature,
		models.Humidity:    s.Humidity,
		models.Pressure:    s.Pressure,
	}
	mapping := make(models.SensorMapping, 0, len(models.KindOrder))
	for _, kind := range models.KindOrder {
		entry := entries[kind]
		mapping = append(mapping, models.MappingEntry{
			Kind:      kind,
			SensorID:  entry.SensorID,
			SourceRef: entry.Source,
		})
	}
	return mapping
}

// SourceConfig configures the local value source backends.
type SourceConfig struct {
	Redis  RedisConfig              `mapstructure:"redis"`
	MQTT   MQTTConfig               `mapstructure:"mqtt"`
	Static map[string]StaticReading `mapstructure:"static"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// StaticReading is a fixed reading served by the static source backend.
type StaticReading struct {
	Value string `mapstructure:"value"`
	Unit  string `mapstructure:"unit"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("OSEM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewInternalError("error reading config file", err)
		}
	}

	return unmarshalAndValidate()
}

// unmarshalAndValidate builds a Config from the current viper state. Reload
// paths reuse it so a broken edit never replaces a working config.
func unmarshalAndValidate() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.NewInternalError("error unmarshaling config", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Box defaults
	viper.SetDefault("box.update_interval", DefaultUpdateInterval)
	viper.SetDefault("box.debug_mode", false)

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Source defaults
	viper.SetDefault("source.redis.db", 0)
	viper.SetDefault("source.mqtt.client_id", "ha-opensensemap")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

// Validate checks the box and sensor mapping configuration. Every error it
// returns is a validation error in the sense of internal/errors.
func Validate(config *Config) error {
	if config.Box.BoxID == "" {
		return errors.NewValidationError("box_id is required", nil)
	}
	if !hexIDPattern.MatchString(config.Box.BoxID) {
		return errors.NewValidationError("box_id must be a 24-character hex string", nil)
	}
	if config.Box.UpdateInterval < MinUpdateInterval {
		return errors.NewValidationError("update_interval must be at least 60 seconds", nil)
	}

	active := 0
	for _, entry := range config.Sensors.Mapping() {
		if entry.SensorID == "" && entry.SourceRef == "" {
			continue
		}
		if entry.SensorID == "" || entry.SourceRef == "" {
			return errors.NewValidationError(
				"incomplete sensor pairing for "+string(entry.Kind), nil)
		}
		if !hexIDPattern.MatchString(entry.SensorID) {
			return errors.NewValidationError(
				"sensor_id for "+string(entry.Kind)+" must be a 24-character hex string", nil)
		}
		active++
	}
	if active == 0 {
		return errors.NewValidationError("at least one sensor must be configured", nil)
	}

	return nil
}
