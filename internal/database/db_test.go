package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"app@tcp(db:3306)/units?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=true&clientFoundRows=true",
		DSN("app", "", "db", "3306", "units"))
	assert.True(t, strings.HasPrefix(DSN("app", "pw", "db", "3306", "units"), "app:pw@tcp("))
}

func TestSchemaCoversEveryTable(t *testing.T) {
	for _, table := range []string{
		"users", "refresh_tokens", "towers", "floors", "room_types", "facilities",
		"units", "unit_images", "unit_facilities", "customers", "reservations",
	} {
		assert.Contains(t, Schema(), "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
}
