package migration

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.handmade.network/hmn/pngscope/src/db"
	"git.handmade.network/hmn/pngscope/src/logging"
	"git.handmade.network/hmn/pngscope/src/migration/migrations"
	"git.handmade.network/hmn/pngscope/src/migration/types"
	"git.handmade.network/hmn/pngscope/src/oops"
	"git.handmade.network/hmn/pngscope/src/pngtool"
	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

var listMigrations bool

func init() {
	migrateCommand := &cobra.Command{
		Use:   "migrate [target migration id]",
		Short: "Run database migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if listMigrations {
				ListMigrations()
				return
			}

			targetVersion := time.Time{}
			if len(args) > 0 {
				var err error
				targetVersion, err = time.Parse(time.RFC3339, args[0])
				if err != nil {
					fmt.Printf("ERROR: bad version string: %v\n", err)
					os.Exit(1)
				}
			}
			if err := Migrate(types.MigrationVersion(targetVersion)); err != nil {
				logging.Error().Err(err).Msg("migration failed")
				os.Exit(1)
			}
		},
	}
	migrateCommand.Flags().BoolVar(&listMigrations, "list", false, "List available migrations")

	makeMigrationCommand := &cobra.Command{
		Use:   "makemigration <name> <description>...",
		Short: "Create a new database migration file",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a name and a description.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			name := args[0]
			description := strings.Join(args[1:], " ")

			path, err := MakeMigration(filepath.Join("src", "migration", "migrations"), name, description, time.Now())
			if err != nil {
				logging.Error().Err(err).Msg("failed to create migration")
				os.Exit(1)
			}
			fmt.Println("Successfully created migration file:")
			fmt.Println(path)
		},
	}

	pngtool.RootCommand.AddCommand(migrateCommand)
	pngtool.RootCommand.AddCommand(makeMigrationCommand)
}

func getSortedMigrationVersions() []types.MigrationVersion {
	var allVersions []types.MigrationVersion
	for migrationTime := range migrations.All {
		allVersions = append(allVersions, migrationTime)
	}
	sort.Slice(allVersions, func(i, j int) bool {
		return allVersions[i].Before(allVersions[j])
	})

	return allVersions
}

func getCurrentVersion(ctx context.Context, conn *pgx.Conn) (types.MigrationVersion, error) {
	var currentVersion time.Time
	row := conn.QueryRow(ctx, "SELECT version FROM pngscope_migration")
	err := row.Scan(&currentVersion)
	if err != nil {
		return types.MigrationVersion{}, err
	}
	currentVersion = currentVersion.UTC()

	return types.MigrationVersion(currentVersion), nil
}

func tryGetCurrentVersion(ctx context.Context) types.MigrationVersion {
	conn, err := db.NewConn(ctx)
	if err != nil {
		return types.MigrationVersion{}
	}
	defer conn.Close(ctx)

	currentVersion, _ := getCurrentVersion(ctx, conn)

	return currentVersion
}

func ListMigrations() {
	ctx := context.Background()

	currentVersion := tryGetCurrentVersion(ctx)
	for _, version := range getSortedMigrationVersions() {
		migration := migrations.All[version]
		indicator := "  "
		if version.Equal(currentVersion) {
			indicator = "✔ "
		}
		fmt.Printf("%s%v (%s: %s)\n", indicator, version, migration.Name(), migration.Description())
	}
}

// planMigration returns the versions to apply, in order, to get from current
// to target. forward is false when rolling back.
func planMigration(all []types.MigrationVersion, current, target types.MigrationVersion) (steps []types.MigrationVersion, forward bool, err error) {
	if len(all) == 0 {
		return nil, true, nil
	}
	if target.IsZero() {
		target = all[len(all)-1]
	}

	currentIndex := -1
	targetIndex := -1
	for i, version := range all {
		if current.Equal(version) {
			currentIndex = i
		}
		if target.Equal(version) {
			targetIndex = i
		}
	}
	if targetIndex < 0 {
		return nil, true, oops.New(nil, "could not find migration with version %v", target)
	}

	if currentIndex < targetIndex {
		return all[currentIndex+1 : targetIndex+1], true, nil
	}
	for i := currentIndex; i > targetIndex; i-- {
		steps = append(steps, all[i])
	}
	return steps, false, nil
}

func Migrate(targetVersion types.MigrationVersion) error {
	ctx := context.Background()

	conn, err := db.NewConn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	// create migration table
	_, err = conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pngscope_migration (
			version		TIMESTAMP WITH TIME ZONE
		)
	`)
	if err != nil {
		return oops.New(err, "failed to create migration table")
	}

	// ensure there is a row
	row := conn.QueryRow(ctx, "SELECT COUNT(*) FROM pngscope_migration")
	var numRows int
	err = row.Scan(&numRows)
	if err != nil {
		return oops.New(err, "failed to count migration rows")
	}
	if numRows < 1 {
		_, err := conn.Exec(ctx, "INSERT INTO pngscope_migration (version) VALUES ($1)", time.Time{})
		if err != nil {
			return oops.New(err, "failed to insert initial migration row")
		}
	}

	currentVersion, err := getCurrentVersion(ctx, conn)
	if err != nil {
		return oops.New(err, "failed to get current version")
	}
	if currentVersion.IsZero() {
		fmt.Println("This is the first time you have run database migrations.")
	} else {
		fmt.Printf("Current version: %s\n", currentVersion.String())
	}

	allVersions := getSortedMigrationVersions()
	steps, forward, err := planMigration(allVersions, currentVersion, targetVersion)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Println("Already migrated; nothing to do.")
		return nil
	}

	for _, version := range steps {
		migration := migrations.All[version]

		// Rolling back a migration leaves the database at the one before it.
		newVersion := version
		if !forward {
			newVersion = types.MigrationVersion{}
			for i, v := range allVersions {
				if v.Equal(version) && i > 0 {
					newVersion = allVersions[i-1]
				}
			}
		}

		if err := runStep(ctx, conn, migration, forward, newVersion); err != nil {
			fmt.Printf("MIGRATION FAILED for migration %v.\n", version)
			return err
		}
	}
	return nil
}

func runStep(ctx context.Context, conn *pgx.Conn, migration types.Migration, forward bool, newVersion types.MigrationVersion) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if forward {
		fmt.Printf("Applying migration %v (%v)\n", migration.Version(), migration.Name())
		err = migration.Up(ctx, tx)
	} else {
		fmt.Printf("Rolling back migration %v\n", migration.Version())
		err = migration.Down(ctx, tx)
	}
	if err != nil {
		return oops.New(err, "migration %s failed", migration.Name())
	}

	_, err = tx.Exec(ctx, "UPDATE pngscope_migration SET version = $1", time.Time(newVersion))
	if err != nil {
		return oops.New(err, "failed to update version in migrations table")
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.New(err, "failed to commit transaction")
	}
	return nil
}

//go:embed migrationTemplate.txt
var migrationTemplate string

// MakeMigration writes a new migration file into dir and returns its path.
func MakeMigration(dir, name, description string, now time.Time) (string, error) {
	result := migrationTemplate
	result = strings.ReplaceAll(result, "%NAME%", name)
	result = strings.ReplaceAll(result, "%DESCRIPTION%", fmt.Sprintf("%#v", description))

	now = now.UTC()
	nowConstructor := fmt.Sprintf("time.Date(%d, %d, %d, %d, %d, %d, 0, time.UTC)", now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second())
	result = strings.ReplaceAll(result, "%DATE%", nowConstructor)

	safeVersion := strings.ReplaceAll(types.MigrationVersion(now).String(), ":", "")
	filename := fmt.Sprintf("%v_%v.go", safeVersion, name)
	path := filepath.Join(dir, filename)

	err := os.WriteFile(path, []byte(result), 0644)
	if err != nil {
		return "", oops.New(err, "failed to write migration file")
	}
	return path, nil
}
