package admin_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/roundbet/internal/adapters/admin"
	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	addr, err := admin.NewStatic("gov").Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Address("gov"), addr)

	_, err = admin.NewStatic("").Admin(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
