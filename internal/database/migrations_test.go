package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("positions table exists", func(t *testing.T) {
		var exists bool
		err := testDB.conn.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_name = 'positions'
			)
		`).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("positivity checks are enforced by the schema", func(t *testing.T) {
		_, err := testDB.conn.Exec(`
			INSERT INTO positions (symbol, asset_class, quantity, purchase_price)
			VALUES ('AAPL', 'stock', 0, 150.00)
		`)
		require.Error(t, err, "zero quantity must violate the check constraint")

		_, err = testDB.conn.Exec(`
			INSERT INTO positions (symbol, asset_class, quantity, purchase_price)
			VALUES ('AAPL', 'stock', 10, -1.00)
		`)
		require.Error(t, err, "negative price must violate the check constraint")
	})
}
