package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/grid-manager/internal/config"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()

	t.Setenv("APP_ENV", config.EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STORE_DRIVER", config.StoreDriverMemory)
	t.Setenv("INTERNAL_JOB_TOKEN", "token")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoryStoreServesHealthz(t *testing.T) {
	cfg := memoryConfig(t)

	app, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Nil(t, app.JobRunner)
	assert.Equal(t, cfg.HTTPAddr, app.Server.Addr)

	rec := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_JobRunnerWhenScheduleEnabled(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.JobScheduleEnabled = true
	cfg.JobScheduleInterval = time.Minute

	app, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, app.JobRunner)
}

func TestNew_Errors(t *testing.T) {
	t.Run("empty addr", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.HTTPAddr = " "
		_, err := New(context.Background(), cfg, logging.NewNop())
		require.Error(t, err)
	})

	t.Run("postgres without url", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.StoreDriver = config.StoreDriverPostgres
		cfg.DBURL = ""
		_, err := New(context.Background(), cfg, logging.NewNop())
		require.ErrorContains(t, err, "DB_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.StoreDriver = "sqlite"
		_, err := New(context.Background(), cfg, logging.NewNop())
		require.Error(t, err)
	})
}
