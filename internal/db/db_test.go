package db

import (
	"path/filepath"
	"testing"

	"github.com/akaliyev/sponso/internal/config"
)

func TestDSN(t *testing.T) {
	got := DSN(config.DatabaseConfig{User: "root", Host: "127.0.0.1", Port: 3306, Name: "sponso"})
	want := "root@tcp(127.0.0.1:3306)/sponso?parseTime=true"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConnect_SqliteCreatesDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sponso.db")
	gdb, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{"leads", "outreach_messages"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("expected table %q after migration", table)
		}
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	if _, err := Connect(config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
