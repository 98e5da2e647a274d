package repomanager

import (
	"context"
	"database/sql"

	"github.com/roomify-app/roomify/internal/dbx"
	"github.com/roomify-app/roomify/internal/server/repositories/apikeys"
	"github.com/roomify-app/roomify/internal/server/repositories/passwordresets"
	"github.com/roomify-app/roomify/internal/server/repositories/refreshtokens"
	"github.com/roomify-app/roomify/internal/server/repositories/subscriptions"
	"github.com/roomify-app/roomify/internal/server/repositories/usagelogs"
	"github.com/roomify-app/roomify/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	PasswordResets(db dbx.DBTX) passwordresets.Repository
	APIKeys(db dbx.DBTX) apikeys.Repository
	UsageLogs(db dbx.DBTX) usagelogs.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
}
