package main

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/stretchr/testify/assert"
)

// Both persistent backends run migrations at startup; the postgres branch
// goes through migrate.New, which needs its database driver registered by
// an import in this package.
func TestMigrateDriversRegistered(t *testing.T) {
	drivers := database.List()
	assert.Contains(t, drivers, "sqlite3")
	assert.Contains(t, drivers, "postgres")

	assert.Contains(t, source.List(), "file")
}
