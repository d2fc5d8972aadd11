//go:build integration

package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskpad/taskpad/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	tables := []string{
		"users",
		"todos",
	}

	for _, table := range tables {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_UsersTableSchema(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	expectedColumns := []string{
		"id",
		"name",
		"email",
		"created_at",
		"updated_at",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "users", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in users table", col)
			}
		})
	}
}

func TestIntegrationMigration_TodosTableSchema(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	expectedColumns := []string{
		"id",
		"user_id",
		"name",
		"done",
		"category",
		"created_at",
		"updated_at",
	}

	for _, col := range expectedColumns {
		t.Run(col, func(t *testing.T) {
			exists, err := columnExists(ctx, pool, "todos", col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in todos table", col)
			}
		})
	}
}

func TestIntegrationMigration_UsersConstraints(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	// Blank name violates the check constraint
	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ('test-blank-name', '', 'blank-name@example.com')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for blank name")
	}

	// Blank email violates the check constraint
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ('test-blank-email', 'Someone', '')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for blank email")
	}

	// Duplicate email violates the unique index
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ('test-dup-1', 'First', 'dup@example.com')
	`)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ('test-dup-2', 'Second', 'dup@example.com')
	`)
	if err == nil {
		t.Error("Expected unique violation for duplicate email")
	}
}

func TestIntegrationMigration_TodosConstraints(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email)
		VALUES ('todo-owner', 'Owner', 'todo-owner@example.com')
	`)
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	// Blank name violates the check constraint
	_, err = pool.Exec(ctx, `
		INSERT INTO todos (id, user_id, name)
		VALUES ('test-blank-todo', 'todo-owner', '')
	`)
	if err == nil {
		t.Error("Expected check constraint violation for blank todo name")
	}

	// Missing owner violates the foreign key
	_, err = pool.Exec(ctx, `
		INSERT INTO todos (id, user_id, name)
		VALUES ('test-orphan-todo', 'no-such-user', 'orphan')
	`)
	if err == nil {
		t.Error("Expected foreign key violation for missing owner")
	}

	// Deleting a user with todos is blocked by ON DELETE RESTRICT
	_, err = pool.Exec(ctx, `
		INSERT INTO todos (id, user_id, name)
		VALUES ('test-owned-todo', 'todo-owner', 'keep')
	`)
	if err != nil {
		t.Fatalf("seed todo failed: %v", err)
	}
	_, err = pool.Exec(ctx, `DELETE FROM users WHERE id = 'todo-owner'`)
	if err == nil {
		t.Error("Expected restrict violation when deleting a user with todos")
	}
}

func TestIntegrationMigration_RollbackTodos(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	// Apply down migration
	downPath := filepath.Join(root, "migrations", "000002_todos.down.sql")
	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		t.Fatalf("read down migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}

	exists, err := tableExists(ctx, pool, "todos")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("todos table should not exist after rollback")
	}

	// Users survive a todos rollback
	exists, err = tableExists(ctx, pool, "users")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if !exists {
		t.Error("users table should survive todos rollback")
	}

	// Re-apply up migration for cleanup
	upPath := filepath.Join(root, "migrations", "000002_todos.up.sql")
	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		t.Fatalf("read up migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		t.Fatalf("reapply up migration: %v", err)
	}
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	// Re-applying up migrations must not fail thanks to IF NOT EXISTS
	for _, name := range []string{"000001_users.up.sql", "000002_todos.up.sql"} {
		upPath := filepath.Join(root, "migrations", name)
		upSQL, err := os.ReadFile(upPath)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
			t.Fatalf("second apply of %s should not fail: %v", name, err)
		}
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, pool
}
