package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Monitor.Interval = 30
	s.Monitor.Checks = []CheckSettings{
		{Path: "/", Warning: 80, Critical: 90},
		{Path: "/var", Warning: 70, Critical: 85},
	}
	s.HTTP.Enabled = true
	s.HTTP.Port = "8090"
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero interval", func(s *Settings) { s.Monitor.Interval = 0 }},
		{"empty path", func(s *Settings) { s.Monitor.Checks[0].Path = "" }},
		{"duplicate path", func(s *Settings) { s.Monitor.Checks[1].Path = "/" }},
		{"warning out of range", func(s *Settings) { s.Monitor.Checks[0].Warning = 120 }},
		{"negative critical", func(s *Settings) { s.Monitor.Checks[0].Critical = -1 }},
		{"warning above critical", func(s *Settings) {
			s.Monitor.Checks[0].Warning = 95
			s.Monitor.Checks[0].Critical = 90
		}},
		{"http enabled without port", func(s *Settings) { s.HTTP.Port = "" }},
		{"nats enabled without url", func(s *Settings) {
			s.NATS.Enabled = true
			s.NATS.URL = ""
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)
			assert.Error(t, ValidateSettings(s))
		})
	}
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	configPath := t.TempDir() + "/config.yaml"
	s := validSettings()
	s.Main.Name = "node-1"

	require.NoError(t, SaveYAMLConfig(configPath, s))
	assert.FileExists(t, configPath)
}
