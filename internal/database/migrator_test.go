package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/database"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := database.Migrations()

	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_sync_jobs.sql", "0002_paypal_order_unique.sql"}, names)
}
