// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/telekom/geomail/pkg/config"
	"github.com/telekom/geomail/pkg/version"
)

// clearMailEnv unsets everything the relay reads so the host environment
// cannot leak into a test.
func clearMailEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LISTEN_ADDRESS", "SMTP_HOST", "SMTP_PORT", "EMAIL_USER", "EMAIL_PASS",
		"EMAIL_FROM", "EMAIL_FROM_NAME", "RECIPIENT_EMAIL", "CORS_ALLOW_ORIGINS", "LOG_LEVEL",
		config.EnvConfigPath,
	} {
		t.Setenv(key, "")
	}
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestGetEnvString(t *testing.T) {
	t.Setenv("GEOMAIL_TEST_ENV", "custom-value")

	if got := getEnvString("GEOMAIL_TEST_ENV", "default"); got != "custom-value" {
		t.Fatalf("expected env override, got %s", got)
	}

	if got := getEnvString("GEOMAIL_UNKNOWN_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("GEOMAIL_BOOL_TRUE", "true")
	if !getEnvBool("GEOMAIL_BOOL_TRUE", false) {
		t.Fatal("expected true when env variable explicitly true")
	}

	t.Setenv("GEOMAIL_BOOL_FALSE", "false")
	if getEnvBool("GEOMAIL_BOOL_FALSE", true) {
		t.Fatal("expected false when env variable explicitly false")
	}

	t.Setenv("GEOMAIL_BOOL_INVALID", "sometimes")
	if !getEnvBool("GEOMAIL_BOOL_INVALID", true) {
		t.Fatal("expected fallback default when env value invalid")
	}

	if getEnvBool("GEOMAIL_BOOL_MISSING", false) {
		t.Fatal("expected default false when env missing")
	}
}

func TestGetEnvBool_Variants(t *testing.T) {
	for _, val := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		t.Run("true/"+val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.True(t, getEnvBool("TEST_BOOL", false))
		})
	}
	for _, val := range []string{"false", "FALSE", "0", "no", "No"} {
		t.Run("false/"+val, func(t *testing.T) {
			t.Setenv("TEST_BOOL", val)
			assert.False(t, getEnvBool("TEST_BOOL", true))
		})
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{})
	assert.Equal(t, version.Name, root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["version"])
}

func TestServeCommand_FlagDefaultsFromEnv(t *testing.T) {
	t.Setenv("GEOMAIL_DEBUG", "yes")
	t.Setenv(config.EnvConfigPath, "/etc/geomail/config.yaml")
	t.Setenv("GEOMAIL_ENV_FILE", "/run/secrets/geomail.env")

	cmd := NewServeCommand()
	assert.Equal(t, "true", cmd.Flags().Lookup("debug").DefValue)
	assert.Equal(t, "/etc/geomail/config.yaml", cmd.Flags().Lookup("config").DefValue)
	assert.Equal(t, "/run/secrets/geomail.env", cmd.Flags().Lookup("env-file").DefValue)
}

func TestServeCommand_FlagDefaults(t *testing.T) {
	clearMailEnv(t)
	unsetEnv(t, "GEOMAIL_DEBUG", "GEOMAIL_ENV_FILE")

	cmd := NewServeCommand()
	assert.Equal(t, "false", cmd.Flags().Lookup("debug").DefValue)
	assert.Equal(t, ".env", cmd.Flags().Lookup("env-file").DefValue)
}

func TestVersionCommand_Text(t *testing.T) {
	out := &bytes.Buffer{}
	root := NewRootCommand(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "geomail "+version.Version)
}

func TestVersionCommand_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	root := NewRootCommand(out)
	root.SetArgs([]string{"version", "-o", "json"})

	require.NoError(t, root.Execute())

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, version.Name, info.Name)
	assert.Equal(t, version.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestVersionCommand_YAML(t *testing.T) {
	out := &bytes.Buffer{}
	root := NewRootCommand(out)
	root.SetArgs([]string{"version", "--output", "yaml"})

	require.NoError(t, root.Execute())

	var info map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, version.Name, info["name"])
	assert.Contains(t, info, "platform")
}

func TestVersionCommand_UnknownFormat(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{})
	root.SetArgs([]string{"version", "-o", "toml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestServe_InvalidConfigAbortsStartup(t *testing.T) {
	clearMailEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("EMAIL_USER", "relay@example.com")

	err := Serve(context.Background(), ServeOptions{EnvFile: "missing.env"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "RECIPIENT_EMAIL")
}

func TestServe_MissingExplicitConfigFile(t *testing.T) {
	clearMailEnv(t)
	t.Chdir(t.TempDir())

	err := Serve(context.Background(), ServeOptions{ConfigPath: "does-not-exist.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yaml")
}

func TestServe_RunsUntilCancelled(t *testing.T) {
	clearMailEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := filepath.Join(dir, "geomail.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"EMAIL_USER=relay@example.com\n"+
			"EMAIL_PASS=secret\n"+
			"RECIPIENT_EMAIL=owner@example.com\n"+
			"LISTEN_ADDRESS=127.0.0.1:0\n"+
			"LOG_LEVEL=error\n",
	), 0o600))
	// dotenv never overrides variables that exist, even empty ones
	unsetEnv(t, "EMAIL_USER", "EMAIL_PASS", "RECIPIENT_EMAIL", "LISTEN_ADDRESS", "LOG_LEVEL")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ServeOptions{EnvFile: envFile}) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestPrintConfig_OmitsPassword(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	cfg := config.Config{}
	cfg.Mail.Host = "smtp.example.com"
	cfg.Mail.Port = 587
	cfg.Mail.User = "relay@example.com"
	cfg.Mail.Password = "hunter2"
	cfg.Mail.Recipient = "owner@example.com"
	cfg.Defaults()

	PrintConfig(cfg, log)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "smtp.example.com", fields["smtp_host"])
	assert.Equal(t, true, fields["smtp_password_set"])
	for _, v := range fields {
		assert.NotEqual(t, "hunter2", v)
	}
}
