package repomanager

import (
	"context"
	"database/sql"

	"github.com/EdProwise/beawar-school-sub001/internal/dbx"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs on a *sql.DB or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
}
