package db

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestInitSchemaIsIdempotent(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", "file:schema_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	for i := 0; i < 3; i++ {
		if err := InitSchema(sqlDB); err != nil {
			t.Fatalf("InitSchema call %d failed: %v", i+1, err)
		}
	}

	var name string
	err = sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'hot_spots'`).Scan(&name)
	if err != nil {
		t.Fatalf("hot_spots table missing after InitSchema: %v", err)
	}

	// The repeated runs must not have duplicated anything.
	var count int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM hot_spots`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty table, found %d rows", count)
	}
}
