package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfigFileName is looked up in the directory handed to Load.
const ConfigFileName = "drivingschool.cfg.json"

// ExamConfig holds the timings and thresholds of a trial.
type ExamConfig struct {
	FadeDelay          time.Duration `json:"fadeDelay" mapstructure:"fadeDelay"`
	ArrivalDelay       time.Duration `json:"arrivalDelay" mapstructure:"arrivalDelay"`
	TerminateGrace     time.Duration `json:"terminateGrace" mapstructure:"terminateGrace"`
	ProgressInterval   time.Duration `json:"progressInterval" mapstructure:"progressInterval"`
	PenaltyInterval    time.Duration `json:"penaltyInterval" mapstructure:"penaltyInterval"`
	ArmDistance        float64       `json:"armDistance" mapstructure:"armDistance"`
	UndrivableFeedSize int           `json:"undrivableFeedSize" mapstructure:"undrivableFeedSize"`
	MinVehicleHealth   float64       `json:"minVehicleHealth" mapstructure:"minVehicleHealth"`
	CatalogFile        string        `json:"catalogFile" mapstructure:"catalogFile"`
}

// MemoryConfig holds in-memory storage backend settings
type MemoryConfig struct {
	MaxTrials int `json:"maxTrials" mapstructure:"maxTrials"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds connection settings for the postgres backend
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string
	Memory   MemoryConfig
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled    bool
	Protocol   string
	Host       string
	Port       string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// URL returns the server URL built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// APIConfig holds the remote license service settings
type APIConfig struct {
	Enabled   bool
	ServerURL string
	APIKey    string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers that run
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("exam.fadeDelay", "500ms")
	viper.SetDefault("exam.arrivalDelay", "200ms")
	viper.SetDefault("exam.terminateGrace", "2s")
	viper.SetDefault("exam.progressInterval", "16ms")
	viper.SetDefault("exam.penaltyInterval", "200ms")
	viper.SetDefault("exam.armDistance", 2.0)
	viper.SetDefault("exam.undrivableFeedSize", 32)
	viper.SetDefault("exam.minVehicleHealth", 900.0)
	viper.SetDefault("exam.catalogFile", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.maxTrials", 1000)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "./drivingschool.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "drivingschool")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "soz-metrics")
	viper.SetDefault("influx.bucket", "driving_school")
	viper.SetDefault("influx.backupPath", "./influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "driving-school")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:30120")
	viper.SetDefault("api.apiKey", "")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetExamConfig returns the trial timings and thresholds.
func GetExamConfig() ExamConfig {
	return ExamConfig{
		FadeDelay:          viper.GetDuration("exam.fadeDelay"),
		ArrivalDelay:       viper.GetDuration("exam.arrivalDelay"),
		TerminateGrace:     viper.GetDuration("exam.terminateGrace"),
		ProgressInterval:   viper.GetDuration("exam.progressInterval"),
		PenaltyInterval:    viper.GetDuration("exam.penaltyInterval"),
		ArmDistance:        viper.GetFloat64("exam.armDistance"),
		UndrivableFeedSize: viper.GetInt("exam.undrivableFeedSize"),
		MinVehicleHealth:   viper.GetFloat64("exam.minVehicleHealth"),
		CatalogFile:        viper.GetString("exam.catalogFile"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			MaxTrials: viper.GetInt("storage.memory.maxTrials"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Protocol:   viper.GetString("influx.protocol"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF output configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetAPIConfig returns the remote license service configuration.
func GetAPIConfig() APIConfig {
	return APIConfig{
		Enabled:   viper.GetBool("api.enabled"),
		ServerURL: viper.GetString("api.serverUrl"),
		APIKey:    viper.GetString("api.apiKey"),
	}
}
