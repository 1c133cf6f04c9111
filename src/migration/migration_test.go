package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.handmade.network/hmn/pngscope/src/migration/migrations"
	"git.handmade.network/hmn/pngscope/src/migration/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func version(day int) types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC))
}

func TestRegisteredMigrations(t *testing.T) {
	all := getSortedMigrationVersions()
	require.GreaterOrEqual(t, len(all), 2)
	assert.Equal(t, "Initial", migrations.All[all[0]].Name())
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].Before(all[i]))
	}
	for v, m := range migrations.All {
		assert.True(t, v.Equal(m.Version()), m.Name())
		assert.NotEmpty(t, m.Description(), m.Name())
	}
}

func TestPlanMigration(t *testing.T) {
	all := []types.MigrationVersion{version(1), version(2), version(3)}

	t.Run("fresh database to latest", func(t *testing.T) {
		steps, forward, err := planMigration(all, types.MigrationVersion{}, types.MigrationVersion{})
		require.Nil(t, err)
		assert.True(t, forward)
		assert.Equal(t, all, steps)
	})
	t.Run("partway", func(t *testing.T) {
		steps, forward, err := planMigration(all, version(1), version(2))
		require.Nil(t, err)
		assert.True(t, forward)
		assert.Equal(t, []types.MigrationVersion{version(2)}, steps)
	})
	t.Run("roll back", func(t *testing.T) {
		steps, forward, err := planMigration(all, version(3), version(1))
		require.Nil(t, err)
		assert.False(t, forward)
		assert.Equal(t, []types.MigrationVersion{version(3), version(2)}, steps)
	})
	t.Run("up to date", func(t *testing.T) {
		steps, _, err := planMigration(all, version(3), types.MigrationVersion{})
		require.Nil(t, err)
		assert.Empty(t, steps)
	})
	t.Run("unknown target", func(t *testing.T) {
		_, _, err := planMigration(all, version(1), version(9))
		assert.NotNil(t, err)
	})
}

func TestMakeMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	path, err := MakeMigration(dir, "AddThing", "Add a \"thing\"", now)
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-03-04T050607Z_AddThing.go"), path)

	contents, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(contents), "type AddThing struct{}")
	assert.Contains(t, string(contents), "time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)")
	assert.Contains(t, string(contents), `return "Add a \"thing\""`)
}
