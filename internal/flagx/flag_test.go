package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	cfgFlags := []string{"-c", "-config", "--config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "strapi.yaml", "-a", "http://cms:1337"}, cfgFlags, []string{"-c", "strapi.yaml"}},
		{"equals form", []string{"--config=strapi.json", "-l", "debug"}, cfgFlags, []string{"--config=strapi.json"}},
		{"order preserved across forms", []string{"-config=a.yaml", "-t", "5s", "-c", "b.yaml"}, cfgFlags, []string{"-config=a.yaml", "-c", "b.yaml"}},
		{"nothing allowed present", []string{"-a", "http://cms", "-s=false", "positional"}, cfgFlags, []string{}},
		{"dangling flag kept", []string{"-c"}, cfgFlags, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "-l", "warn"}, cfgFlags, []string{"-c"}},
		{"dash inside equals value", []string{"--config=-odd.yaml"}, cfgFlags, []string{"--config=-odd.yaml"}},
		{"several allowed flags", []string{"-a", "http://cms:1337", "-t", "10s", "-d", "bbolt"}, []string{"-a", "-d"}, []string{"-a", "http://cms:1337", "-d", "bbolt"}},
		{"empty", []string{}, cfgFlags, []string{}},
		{"repeat kept", []string{"-c", "one.yaml", "-c", "two.yaml"}, []string{"-c"}, []string{"-c", "one.yaml", "-c", "two.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		assert.Equal(t, "/etc/strapi.json", ConfigFileFlag([]string{"-c", "/etc/strapi.json"}))
	})

	t.Run("long", func(t *testing.T) {
		assert.Equal(t, "/etc/strapi.yaml", ConfigFileFlag([]string{"-config", "/etc/strapi.yaml"}))
	})

	t.Run("double dash equals among other flags", func(t *testing.T) {
		assert.Equal(t, "/p.yml", ConfigFileFlag([]string{"-a", "http://cms", "--config=/p.yml", "-t", "5s"}))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, ConfigFileFlag([]string{"-l", "debug", "-s=false"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "/2.json", ConfigFileFlag([]string{"-c", "/1.json", "-config", "/2.json"}))
	})
}
