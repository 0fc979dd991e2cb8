package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/db"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sqlx.DB, *model.User) {
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
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), user))
	return conn, user
}

func newAttribute(user *model.User, name string, typ model.AttributeType, created time.Time) *model.Attribute {
	return &model.Attribute{
		ID:             uuid.NewString(),
		OrganizationID: user.OrganizationID,
		AuthorID:       user.ID,
		Name:           name,
		Type:           typ,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func base(attr *model.Attribute, created time.Time) model.ValueBase {
	return model.ValueBase{
		ID:          uuid.NewString(),
		AttributeID: attr.ID,
		Type:        attr.Type,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}
