package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 10); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 8, 30, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTrimBuildsNextCursor(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{{uuid.New(), base}, {uuid.New(), base.Add(-time.Hour)}, {uuid.New(), base.Add(-2 * time.Hour)}}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page := Trim(rows, 2, cursorOf)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	next, err := ParseCursor(page.NextCursor)
	if err != nil || next == nil {
		t.Fatalf("expected next cursor, got %v", err)
	}
	if next.ID != rows[1].id {
		t.Fatalf("next cursor should point at last kept row")
	}

	last := Trim(rows[:1], 2, cursorOf)
	if last.NextCursor != "" {
		t.Fatalf("final page should not carry a cursor")
	}
	if empty := Trim[row](nil, 2, cursorOf); empty.Items == nil {
		t.Fatalf("empty page should serialize as []")
	}
}

func TestParseCursorRejectsIncompleteCursor(t *testing.T) {
	for _, payload := range []string{`not json`, `{"t":"2026-03-01T00:00:00Z"}`, `{"id":"` + uuid.NewString() + `"}`} {
		_, err := ParseCursor(base64.RawURLEncoding.EncodeToString([]byte(payload)))
		if !errors.Is(err, ErrBadCursor) {
			t.Fatalf("payload %s: expected ErrBadCursor, got %v", payload, err)
		}
	}
}

func TestAfterScope(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	type movement struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}

	plain := gdb.Model(&movement{}).Scopes(After(nil, "m.created_at", "m.id")).Find(&[]movement{}).Statement.SQL.String()
	if strings.Contains(plain, "WHERE") {
		t.Fatalf("nil cursor should not filter: %s", plain)
	}

	c := &Cursor{CreatedAt: time.Now(), ID: uuid.New()}
	stmt := gdb.Model(&movement{}).Scopes(After(c, "m.created_at", "m.id")).Find(&[]movement{}).Statement
	if !strings.Contains(stmt.SQL.String(), "(m.created_at, m.id) < (?, ?)") {
		t.Fatalf("unexpected sql %s", stmt.SQL.String())
	}
	if len(stmt.Vars) != 2 {
		t.Fatalf("expected two bound vars, got %v", stmt.Vars)
	}
}
