package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when the file is missing", func(t *testing.T) {
		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, ":8181", cfg.Listen)
		assert.Equal(t, "statsbudsjett", cfg.Database.Schema)
		assert.Equal(t, 10*time.Minute, cfg.Data.CacheTTL)
		assert.False(t, cfg.Amqp.Enabled)
		assert.Empty(t, cfg.Cron.Secret)
	})

	t.Run("should layer the file and then the environment", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		yaml := `
listen: ":9000"
data:
  dir: /srv/data
  cachettl: 30s
aggregation:
  expenditure:
    palette: ["#000000"]
    rules:
      - id: trygd
        name: Folketrygden
        areas: [28, 29]
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		t.Setenv("STATSBUDSJETT_CRON_SECRET", "s3cret")
		t.Setenv("STATSBUDSJETT_DATA_DIR", "/override")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.Listen)
		assert.Equal(t, "/override", cfg.Data.Dir)
		assert.Equal(t, 30*time.Second, cfg.Data.CacheTTL)
		assert.Equal(t, "s3cret", cfg.Cron.Secret)
		require.Len(t, cfg.Aggregation.Expenditure.Rules, 1)
		assert.Equal(t, "trygd", cfg.Aggregation.Expenditure.Rules[0].Id)
		assert.Equal(t, []int{28, 29}, cfg.Aggregation.Expenditure.Rules[0].Areas)
		assert.Equal(t, []string{"#000000"}, cfg.Aggregation.Expenditure.Palette)
	})
}
