// Package repomanager vends repositories bound to a dbx.DBTX so services can
// use the same code path with a plain connection or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userservice/internal/dbx"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/userservice/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
