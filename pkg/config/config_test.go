package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
	"github.com/CodeMonkeyCybersecurity/retire/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	oldCfg, oldEnv := DefaultConfigFile, DefaultEnvFile
	DefaultConfigFile = filepath.Join(dir, "absent.yaml")
	DefaultEnvFile = filepath.Join(dir, "absent.env")
	t.Cleanup(func() {
		DefaultConfigFile, DefaultEnvFile = oldCfg, oldEnv
	})
	return dir
}

// unsetForTest clears key for the duration of the test and restores it after.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "", "")
	require.NoError(t, err)

	assert.Equal(t, session.DefaultCooldownPeriod, cfg.Cooldown)
	assert.Equal(t, 30*time.Second, cfg.MetadataTimeout)
	assert.Equal(t, "/usr/sbin/diskutil", cfg.DiskutilPath)
	assert.Equal(t, "/usr/sbin/firmwarepasswd", cfg.FirmwarepasswdPath)
	assert.Equal(t, "/var/lib/retire/journal", cfg.JournalDir)
	assert.Equal(t, 1.0, cfg.NotifyRate)
	assert.Empty(t, cfg.WebhookURL)
	assert.False(t, cfg.DryRun)

	sc := cfg.Session("lab-imac-07")
	assert.Equal(t, "lab-imac-07", sc.Hostname)
	assert.Equal(t, session.DefaultSuccessMessage, sc.SuccessMessage)
	assert.Equal(t, session.DefaultFailureMessage, sc.FailureMessage)
	assert.Equal(t, cfg.DiskutilPath, cfg.Diskutil().DiskutilPath)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	cfgFile := filepath.Join(dir, "retire.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(
		"cooldown: 20s\njournal_dir: /srv/journal\nsuccess_message: all clear\n"), 0o600))

	t.Setenv("RETIRE_COOLDOWN", "5s")

	cmd := &cobra.Command{Use: "erase"}
	cli.AddStringFlag(cmd, "journal-dir", "", "", "journal")
	cli.AddBoolFlag(cmd, "dry-run", "", false, "rehearse")
	require.NoError(t, cmd.Flags().Set("dry-run", "true"))

	v := viper.New()
	require.NoError(t, cli.BindFlagsToViper(cmd, v))

	cfg, err := Load(v, cfgFile, "")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Cooldown, "environment beats config file")
	assert.Equal(t, "/srv/journal", cfg.JournalDir, "unset flag does not mask config file")
	assert.Equal(t, "all clear", cfg.SuccessMessage)
	assert.True(t, cfg.DryRun, "flag beats everything")
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	unsetForTest(t, "RETIRE_WEBHOOK_URL")

	envFile := filepath.Join(dir, "retire.env")
	require.NoError(t, os.WriteFile(envFile,
		[]byte("RETIRE_WEBHOOK_URL=https://hooks.example.com/services/T0/B0/x\n"), 0o600))

	cfg, err := Load(viper.New(), "", envFile)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/services/T0/B0/x", cfg.WebhookURL)
}

func TestLoadExplicitFilesMustExist(t *testing.T) {
	dir := isolate(t)

	_, err := Load(viper.New(), filepath.Join(dir, "nope.yaml"), "")
	require.Error(t, err)
	assert.Equal(t, retire_err.ExitPrecondition, retire_err.GetExitCode(err))

	_, err = Load(viper.New(), "", filepath.Join(dir, "nope.env"))
	require.Error(t, err)
	assert.Equal(t, retire_err.ExitPrecondition, retire_err.GetExitCode(err))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "webhook not a url", key: "RETIRE_WEBHOOK_URL", val: "not a url"},
		{name: "negative cooldown", key: "RETIRE_COOLDOWN", val: "-1s"},
		{name: "zero metadata timeout", key: "RETIRE_METADATA_TIMEOUT", val: "0s"},
		{name: "zero notify rate", key: "RETIRE_NOTIFY_RATE", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load(viper.New(), "", "")
			require.Error(t, err)
			assert.Equal(t, retire_err.ExitPrecondition, retire_err.GetExitCode(err))
		})
	}
}

func TestValidateZeroCooldownAllowed(t *testing.T) {
	cfg := Config{
		SuccessMessage:     "ok",
		FailureMessage:     "fail",
		JournalDir:         "/tmp/j",
		Cooldown:           0,
		MetadataTimeout:    time.Second,
		DiskutilPath:       "/usr/sbin/diskutil",
		FirmwarepasswdPath: "/usr/sbin/firmwarepasswd",
		NotifyRate:         1,
	}
	assert.NoError(t, cfg.Validate())

	cfg.JournalDir = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadForCommand(t *testing.T) {
	dir := isolate(t)

	cfgFile := filepath.Join(dir, "retire.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("journal_dir: /srv/retire\n"), 0o600))

	root := &cobra.Command{Use: "retire"}
	root.PersistentFlags().String(FlagConfig, "", "config file")
	root.PersistentFlags().String(FlagEnvFile, "", "env file")
	cmd := &cobra.Command{Use: "erase"}
	cli.AddDurationFlag(cmd, "cooldown", session.DefaultCooldownPeriod, "cooldown")
	root.AddCommand(cmd)

	require.NoError(t, root.PersistentFlags().Set(FlagConfig, cfgFile))
	require.NoError(t, cmd.Flags().Set("cooldown", "0s"))

	cfg, err := LoadForCommand(cmd)
	require.NoError(t, err)
	assert.Equal(t, "/srv/retire", cfg.JournalDir)
	assert.Equal(t, time.Duration(0), cfg.Cooldown)
}
