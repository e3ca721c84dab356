package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect(t *testing.T) {
	tests := []struct {
		dialect Dialect
		valid   bool
	}{
		{Postgres, true},
		{MySQL, true},
		{MSSQL, true},
		{SQLite, true},
		{Dialect("oracle"), false},
		{Dialect(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.dialect.Valid())
			assert.Equal(t, string(tt.dialect), tt.dialect.String())
		})
	}
}
