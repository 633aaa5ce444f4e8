package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "sqlite3" {
			t.Errorf("DriverName() = %v, want sqlite3", got)
		}
	})

	t.Run("SupportsLastInsertID", func(t *testing.T) {
		if !dialect.SupportsLastInsertID() {
			t.Error("SupportsLastInsertID() should return true for SQLite")
		}
	})

	t.Run("RowLockSuffix", func(t *testing.T) {
		if got := dialect.RowLockSuffix(); got != "" {
			t.Errorf("RowLockSuffix() = %q, want empty for SQLite", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "sqlite" {
			t.Errorf("MigrationsSubdir() = %v, want sqlite", got)
		}
	})
}

func TestDialectPostgres(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "postgres" {
			t.Errorf("DriverName() = %v, want postgres", got)
		}
	})

	t.Run("SupportsLastInsertID", func(t *testing.T) {
		if dialect.SupportsLastInsertID() {
			t.Error("SupportsLastInsertID() should return false for PostgreSQL")
		}
	})

	t.Run("RowLockSuffix", func(t *testing.T) {
		if got := dialect.RowLockSuffix(); got != " FOR UPDATE" {
			t.Errorf("RowLockSuffix() = %q, want \" FOR UPDATE\"", got)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		if got := dialect.MigrationsSubdir(); got != "postgres" {
			t.Errorf("MigrationsSubdir() = %v, want postgres", got)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		if got := dialect.DriverName(); got != "mysql" {
			t.Errorf("DriverName() = %v, want mysql", got)
		}
	})

	t.Run("SupportsLastInsertID", func(t *testing.T) {
		if !dialect.SupportsLastInsertID() {
			t.Error("SupportsLastInsertID() should return true for MySQL")
		}
	})

	t.Run("RowLockSuffix", func(t *testing.T) {
		if got := dialect.RowLockSuffix(); got != " FOR UPDATE" {
			t.Errorf("RowLockSuffix() = %q, want \" FOR UPDATE\"", got)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM learners WHERE id = ?",
			expected: "SELECT * FROM learners WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO learners (name, email) VALUES (?, ?)",
			expected: "INSERT INTO learners (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE practice_sessions SET status = ?, summary = ? WHERE id = ?",
			expected: "UPDATE practice_sessions SET status = ?, summary = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.RewriteQuery(tt.query); got != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", got, tt.expected)
			}
		})
	}
}
