// pkg/config/config.go

package config

import (
	"os"
	"time"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/diskutil"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/firmware"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/report"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "RETIRE"

// Keys understood by Load. Flags use the same names with hyphens.
const (
	KeyWebhookURL         = "webhook_url"
	KeySuccessMessage     = "success_message"
	KeyFailureMessage     = "failure_message"
	KeyJournalDir         = "journal_dir"
	KeyCooldown           = "cooldown"
	KeyMetadataTimeout    = "metadata_timeout"
	KeyDiskutilPath       = "diskutil_path"
	KeyFirmwarepasswdPath = "firmwarepasswd_path"
	KeyNotifyRate         = "notify_rate"
	KeyDryRun             = "dry_run"
)

// Optional files read when no explicit path is given. Variables so tests can
// point them elsewhere.
var (
	DefaultConfigFile = "/etc/retire/retire.yaml"
	DefaultEnvFile    = "/etc/retire/retire.env"
)

type Config struct {
	WebhookURL         string        `mapstructure:"webhook_url" validate:"omitempty,url"`
	SuccessMessage     string        `mapstructure:"success_message" validate:"required"`
	FailureMessage     string        `mapstructure:"failure_message" validate:"required"`
	JournalDir         string        `mapstructure:"journal_dir" validate:"required"`
	Cooldown           time.Duration `mapstructure:"cooldown" validate:"gte=0s"`
	MetadataTimeout    time.Duration `mapstructure:"metadata_timeout" validate:"gt=0s"`
	DiskutilPath       string        `mapstructure:"diskutil_path" validate:"required"`
	FirmwarepasswdPath string        `mapstructure:"firmwarepasswd_path" validate:"required"`
	NotifyRate         float64       `mapstructure:"notify_rate" validate:"gt=0"`
	DryRun             bool          `mapstructure:"dry_run"`
}

// SetDefaults registers the stock value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyWebhookURL, "")
	v.SetDefault(KeySuccessMessage, session.DefaultSuccessMessage)
	v.SetDefault(KeyFailureMessage, session.DefaultFailureMessage)
	v.SetDefault(KeyJournalDir, report.DefaultJournalDir)
	v.SetDefault(KeyCooldown, session.DefaultCooldownPeriod)
	v.SetDefault(KeyMetadataTimeout, diskutil.DefaultMetadataTimeout)
	v.SetDefault(KeyDiskutilPath, diskutil.DefaultDiskutilPath)
	v.SetDefault(KeyFirmwarepasswdPath, firmware.DefaultFirmwarepasswdPath)
	v.SetDefault(KeyNotifyRate, 1.0)
	v.SetDefault(KeyDryRun, false)
}

// Load resolves configuration from, lowest precedence first: defaults, the
// YAML config file, the environment (seeded from envFile) and any flags
// already bound to v. Empty paths fall back to the optional defaults.
func Load(v *viper.Viper, configFile, envFile string) (*Config, error) {
	SetDefaults(v)

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	cli.SetViperEnvPrefix(v, EnvPrefix)

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, retire_err.NewValidationError("configuration could not be decoded", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return retire_err.NewValidationError("invalid configuration", err,
			"check "+DefaultConfigFile+" and RETIRE_* environment variables")
	}
	return nil
}

// Session maps the configuration onto session settings.
func (c *Config) Session(hostname string) session.Config {
	return session.Config{
		CooldownPeriod: c.Cooldown,
		SuccessMessage: c.SuccessMessage,
		FailureMessage: c.FailureMessage,
		Hostname:       hostname,
	}
}

// Diskutil maps the configuration onto provider settings.
func (c *Config) Diskutil() diskutil.ProviderConfig {
	return diskutil.ProviderConfig{
		DiskutilPath:    c.DiskutilPath,
		MetadataTimeout: c.MetadataTimeout,
	}
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return retire_err.NewValidationError("env file not readable", cerr.Wrap(err, path))
		}
		return nil
	}
	// Existing environment variables win over the file.
	if err := godotenv.Load(path); err != nil {
		return retire_err.NewValidationError("env file could not be parsed", cerr.Wrap(err, path))
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		if _, err := os.Stat(DefaultConfigFile); err != nil {
			return nil
		}
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return retire_err.NewValidationError("config file could not be read", cerr.Wrap(err, path))
	}
	return nil
}
