package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty library", cfg: Config{Libraries: []string{""}, LocaleOrder: []string{"en_US"}}, wantErr: "libraries"},
		{name: "empty locale", cfg: Config{LocaleOrder: []string{"de_CH", ""}}, wantErr: "localeorder"},
		{name: "no locale", cfg: Config{}, wantErr: "locale_order"},
		{name: "valid", cfg: Config{Libraries: []string{"lib"}, LocaleOrder: []string{"de_CH"}, NormOrder: []string{"IEC 60617"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "otc.yaml", `
libraries: [lib/base, lib/extra]
locale_order: [de_CH, en_US]
norm_order: [IEC 60617]
strict: true
`)
	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/base", "lib/extra"}, cfg.Libraries)
	assert.Equal(t, []string{"de_CH", "en_US"}, cfg.LocaleOrder)
	assert.True(t, cfg.Strict)

	s := cfg.Settings()
	assert.Equal(t, cfg.LocaleOrder, s.LocaleOrder)
	assert.Equal(t, []string{"IEC 60617"}, s.NormOrder)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeFile(t, "otc.yaml", "strict: false\n")
	t.Setenv("OTC_STRICT", "true")
	t.Setenv("OTC_IGNORE_FILE", "ignored.lp")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "ignored.lp", cfg.IgnoreFile)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "otc.yaml", "locale_order: [\"\"]\n")
	_, err := Load(viper.New(), path)
	require.Error(t, err)
}
