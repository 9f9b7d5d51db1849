package pgx

import (
	"context"
	"strings"
	"testing"

	"github.com/khabargraph/backend/pkg/common"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.id
	return nil
}

// fakeDB answers the select/insert statements of the get-or-create helpers
// from an in-memory table keyed by the statement's arguments.
type fakeDB struct {
	rows    map[string]int64
	nextID  int64
	inserts int

	// simulates losing an insert race: the insert hits a conflict and
	// returns no row, but the row is visible to the follow-up select
	loseInsertRace bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[string]int64), nextID: 100}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgxv5.Row {
	stmt := strings.TrimSpace(sql)
	key := rowKey(stmt, args)

	switch {
	case strings.HasPrefix(stmt, "SELECT"):
		if id, ok := f.rows[key]; ok {
			return fakeRow{id: id}
		}
		return fakeRow{err: pgxv5.ErrNoRows}
	case strings.HasPrefix(stmt, "INSERT"):
		f.inserts++
		if f.loseInsertRace {
			f.loseInsertRace = false
			f.rows[key] = f.nextID
			f.nextID++
			return fakeRow{err: pgxv5.ErrNoRows}
		}
		if _, ok := f.rows[key]; ok {
			return fakeRow{err: pgxv5.ErrNoRows}
		}
		f.rows[key] = f.nextID
		f.nextID++
		return fakeRow{id: f.rows[key]}
	default:
		return fakeRow{err: pgxv5.ErrNoRows}
	}
}

// rowKey reduces a statement's arguments to its table's uniqueness key:
// (name, type) for entities, url for sources, label for actors.
func rowKey(stmt string, args []any) string {
	if strings.Contains(stmt, "sources") && strings.HasPrefix(stmt, "INSERT") {
		return args[1].(string)
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\x00")
}

func TestGetOrCreateEntityIdempotent(t *testing.T) {
	db := newFakeDB()
	ctx := context.Background()

	first, err := getOrCreateEntity(ctx, db, "Nepal Police", "Organization")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := getOrCreateEntity(ctx, db, "Nepal Police", "Organization")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first != second {
		t.Errorf("ids differ across calls: %d vs %d", first, second)
	}
	if db.inserts != 1 {
		t.Errorf("inserts = %d, want exactly 1", db.inserts)
	}
}

func TestGetOrCreateEntityDistinctTypes(t *testing.T) {
	db := newFakeDB()
	ctx := context.Background()

	asOrg, err := getOrCreateEntity(ctx, db, "Kathmandu", "Organization")
	if err != nil {
		t.Fatal(err)
	}
	asPlace, err := getOrCreateEntity(ctx, db, "Kathmandu", "Place")
	if err != nil {
		t.Fatal(err)
	}

	if asOrg == asPlace {
		t.Errorf("same name with different types must be distinct entities, both got %d", asOrg)
	}
}

func TestGetOrCreateEntityLosesInsertRace(t *testing.T) {
	db := newFakeDB()
	db.loseInsertRace = true
	ctx := context.Background()

	id, err := getOrCreateEntity(ctx, db, "Nepal Army", "Organization")
	if err != nil {
		t.Fatalf("get-or-create after lost race: %v", err)
	}
	if id == 0 {
		t.Error("expected the winner's id after losing the insert race")
	}
}

func TestGetOrCreateEntityValidation(t *testing.T) {
	db := newFakeDB()
	ctx := context.Background()

	if _, err := getOrCreateEntity(ctx, db, "", "Person"); err == nil {
		t.Error("empty name must be rejected")
	}
	if _, err := getOrCreateEntity(ctx, db, "Alice", ""); err == nil {
		t.Error("empty type must be rejected")
	}
	if db.inserts != 0 {
		t.Errorf("invalid records must not reach the database, inserts = %d", db.inserts)
	}
}

func TestGetOrCreateSourceIdempotent(t *testing.T) {
	db := newFakeDB()
	ctx := context.Background()
	ref := common.SourceRef{Title: "T", URL: "http://x", PublishedDate: "2024-01-01"}

	first, err := getOrCreateSource(ctx, db, ref)
	if err != nil {
		t.Fatal(err)
	}
	// a second event citing the same url reuses the row
	second, err := getOrCreateSource(ctx, db, common.SourceRef{URL: "http://x"})
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("ids differ for same url: %d vs %d", first, second)
	}
	if db.inserts != 1 {
		t.Errorf("inserts = %d, want exactly 1", db.inserts)
	}
}
