package schoolmate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolmate/schoolmate-core/internal/models"
	"github.com/schoolmate/schoolmate-core/pkg/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Env:     config.EnvDevelopment,
		Store:   config.StoreConfig{DocumentPath: filepath.Join(dir, "school.json"), SeedDemoData: true},
		Exports: config.ExportsConfig{Dir: filepath.Join(dir, "exports")},
	}
	app, err := NewWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestAppLoginToDashboard(t *testing.T) {
	app := newTestApp(t)

	user, err := app.Auth.Login(models.LoginRequest{Email: "principal@school.edu", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	overview, err := app.Dashboard.Summary(app.Auth.Current())
	require.NoError(t, err)
	assert.Equal(t, 1, overview.TotalStudents)
	assert.Equal(t, 1, overview.TotalTeachers)
	assert.Equal(t, 2, overview.TotalClasses)
}

func TestAppSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Env:     config.EnvDevelopment,
		Store:   config.StoreConfig{DocumentPath: filepath.Join(dir, "school.json"), SeedDemoData: true},
		Exports: config.ExportsConfig{Dir: filepath.Join(dir, "exports")},
	}

	app, err := NewWithConfig(cfg)
	require.NoError(t, err)
	_, err = app.Auth.Login(models.LoginRequest{Email: "aman@school.edu", Password: "stud123"})
	require.NoError(t, err)
	require.NoError(t, app.Close())

	reopened, err := NewWithConfig(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	actor := reopened.Auth.Current()
	assert.Equal(t, models.RoleStudent, actor.Role)
	assert.Equal(t, "u_s1", actor.UserID)
}
