package types_test

import (
	"fmt"
	"testing"

	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

func TestClassesSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("loading record: %w", types.NotFound.New("medical record %s", "abc"))

	require.True(t, types.NotFound.Has(err))
	require.False(t, types.Forbidden.Has(err))
	require.Contains(t, err.Error(), "medical record abc")
}

func TestCustomErrorString(t *testing.T) {
	err := &types.CustomError{Code: 403, Message: "nope", Type: "auth"}
	require.Equal(t, "403: nope [type: auth]", err.Error())
}
