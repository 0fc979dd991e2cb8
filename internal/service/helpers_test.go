package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/attrtype"
	"github.com/stockpile-hq/stockpile/internal/db"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/repository"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db         *sqlx.DB
	principal  model.Principal
	attributes *AttributeService
	assets     *AssetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := db.SetupTestDB(t)

	org := "org-1"
	user := &model.User{
		ID:             uuid.NewString(),
		Email:          "owner@example.com",
		PasswordHash:   "hash",
		OrganizationID: &org,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(conn).Create(context.Background(), user))

	assetRepo := repository.NewAssetRepository(conn)
	registry := attrtype.New(repository.NewValueTables(conn))
	attributes := NewAttributeService(repository.NewAttributeRepository(conn), assetRepo, registry)

	return &fixture{
		db:         conn,
		principal:  model.Principal{ID: user.ID, OrganizationID: &org},
		attributes: attributes,
		assets:     NewAssetService(assetRepo, attributes),
	}
}

func (f *fixture) createAttribute(t *testing.T, in CreateAttributeInput) *model.Attribute {
	t.Helper()
	attr, err := f.attributes.CreateAttribute(context.Background(), f.principal, in)
	require.NoError(t, err)
	return attr
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func strPtr(s string) *string { return &s }
