package orgs

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strydehq/stryde/pkg/rbac"
)

func TestPostgresStore_FindMembership_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id, organization_id, role").
		WillReturnError(errors.New("connection reset"))

	store := NewPostgresStore(db)
	m, err := store.FindMembership(context.Background(), "user-1", "org-1")
	assert.Error(t, err)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetOrganization_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, slug").
		WillReturnError(errors.New("connection reset"))

	store := NewPostgresStore(db)
	org, err := store.GetOrganization(context.Background(), "org-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrganizationNotFound)
	assert.Nil(t, org)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateMemberRole_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE organization_members").
		WillReturnError(errors.New("deadlock detected"))

	store := NewPostgresStore(db)
	err = store.UpdateMemberRole(context.Background(), "user-1", "org-1", rbac.RoleTrainer)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
