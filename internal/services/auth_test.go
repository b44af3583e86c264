package services

import (
	"context"
	"testing"

	"github.com/localnerve/medrecords/internal/models"
	"github.com/localnerve/medrecords/internal/testutil"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

// tokens maps session tokens to user ids
type tokens map[string]string

func (v tokens) ValidateSession(_ context.Context, token string) (string, error) {
	id, ok := v[token]
	if !ok {
		return "", types.Unauthorized.New("session is not valid")
	}
	return id, nil
}

func TestAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)

	sessions := &Sessions{DB: db, Validator: tokens{
		"prof":     fx.ProfessionalUser.ID,
		"inactive": fx.Inactive.ID,
		"stranger": "u-unknown",
	}}

	actor, err := sessions.Authenticate(ctx, "prof")
	require.NoError(t, err)
	require.Equal(t, fx.ProfessionalUser.ID, actor.ID)
	require.Equal(t, models.RoleProfessional, actor.Role)

	_, err = sessions.Authenticate(ctx, "inactive")
	require.True(t, types.Forbidden.Has(err))
	require.Contains(t, err.Error(), "inactive")

	_, err = sessions.Authenticate(ctx, "stranger")
	require.True(t, types.Forbidden.Has(err))

	_, err = sessions.Authenticate(ctx, "forged")
	require.True(t, types.Unauthorized.Has(err))

	_, err = sessions.Authenticate(ctx, "")
	require.True(t, types.Unauthorized.Has(err))
}
