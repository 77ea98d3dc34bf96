// cmd/migrate/main.go
// Imports a legacy predictions.json document into the PostgreSQL store,
// preserving ids, identities and timestamps.
//
// Usage:
//
//	DB_PASS="pgpass" go run ./cmd/migrate -file predictions.json
package main

import (
	"context"
	"flag"
	"log"

	"github.com/sahanirahul/bihar-election-2025/config"
	bundb "github.com/sahanirahul/bihar-election-2025/db"
	"github.com/sahanirahul/bihar-election-2025/store/filestore"
)

func main() {
	ctx := context.Background()

	file := flag.String("file", "predictions.json", "legacy JSON document to import")
	flag.Parse()

	fs, err := filestore.New(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	preds, err := fs.All(ctx)
	if err != nil {
		log.Fatalf("read %s: %v", *file, err)
	}
	log.Printf("loaded %d predictions from %s", len(preds), *file)

	cfg := config.Load()
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	inserted := 0
	for i := range preds {
		res, err := pgDB.NewInsert().Model(&preds[i]).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			log.Fatalf("insert prediction %d: %v", preds[i].ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	// Bump the id sequence past the imported rows.
	if _, err := pgDB.ExecContext(ctx,
		`SELECT setval(pg_get_serial_sequence('predictions','id'), (SELECT COALESCE(MAX(id),1) FROM predictions))`); err != nil {
		log.Fatalf("advance id sequence: %v", err)
	}

	log.Printf("imported %d predictions (%d already present)", inserted, len(preds)-inserted)
}
