// Package migrations embeds the run-history SQL migration files into the
// binary, so razerctl needs no SQL files on disk at runtime.
package migrations

import (
	"embed"

	"github.com/180254/razerctl/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files are at the root of the embedded FS
}
