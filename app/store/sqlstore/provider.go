package sqlstore

import (
	"context"
	"embed"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/avatarops-ai/avatarops/app/store"
	"github.com/avatarops-ai/avatarops/pkg/register"
	"github.com/avatarops-ai/avatarops/pkg/sqlstore"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func init() {
	sq.StatementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

var provider = &Provider{
	stores: &Stores{},
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

type Stores struct {
	store.UserStore
	store.KnowledgeBaseStore
	store.ConversationStore
	store.MessageStore
}

func (s *Provider) UserStore() store.UserStore {
	return s.stores.UserStore
}

func (s *Provider) KnowledgeBaseStore() store.KnowledgeBaseStore {
	return s.stores.KnowledgeBaseStore
}

func (s *Provider) ConversationStore() store.ConversationStore {
	return s.stores.ConversationStore
}

func (s *Provider) MessageStore() store.MessageStore {
	return s.stores.MessageStore
}

type RegisterKey struct{}

func MustSetup(m sqlstore.ConnectConfig, s ...sqlstore.ConnectConfig) func() *Provider {
	provider.SqlProvider = sqlstore.MustSetupProvider(m, s...)

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

const migrationLedgerSchema = `CREATE TABLE IF NOT EXISTS avatarops_migrations (
	file_name VARCHAR(255) PRIMARY KEY,
	applied_at BIGINT NOT NULL
)`

// Install applies the embedded schema files in lexical order. Applied files
// are recorded in avatarops_migrations and skipped on the next boot.
func (p *Provider) Install() error {
	ctx := context.Background()
	if _, err := p.GetMaster().ExecContext(ctx, migrationLedgerSchema); err != nil {
		return err
	}

	applied := make(map[string]bool)
	var names []string
	if err := p.GetMaster().SelectContext(ctx, &names, "SELECT file_name FROM avatarops_migrations"); err != nil {
		return err
	}
	for _, name := range names {
		applied[name] = true
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if applied[entry.Name()] {
			continue
		}
		raw, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return err
		}
		if _, err := p.GetMaster().ExecContext(ctx, string(raw)); err != nil {
			slog.Error("failed to apply migration", slog.String("file", entry.Name()), slog.String("error", err.Error()))
			return err
		}
		query, args, err := sq.Insert("avatarops_migrations").
			Columns("file_name", "applied_at").
			Values(entry.Name(), time.Now().Unix()).ToSql()
		if err != nil {
			return err
		}
		if _, err := p.GetMaster().ExecContext(ctx, query, args...); err != nil {
			return err
		}
		slog.Info("applied migration", slog.String("file", entry.Name()))
	}
	return nil
}
