package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/okurt/santral/internal/database"
	"github.com/okurt/santral/internal/database/repository"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "santral.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func directoryServer(t *testing.T, respond func(w http.ResponseWriter, req directoryRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req directoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respond(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncUpsertsDirectory(t *testing.T) {
	srv := directoryServer(t, func(w http.ResponseWriter, req directoryRequest) {
		if req.Action != "dahili_liste" {
			t.Errorf("action = %q, want dahili_liste", req.Action)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"type": "success",
			"values": []map[string]string{
				{"user_adi": "Ayse Demir", "dahili_no": "1001", "gsm": "05551112233"},
				{"user_adi": "Mehmet Kaya", "dahili_no": "1002"},
				{}, // blank entries are skipped
			},
		})
	})

	repo := repository.NewContactRepo(testDB(t))
	s := NewSyncer(srv.URL, "admin@pbx", "pw", repo)

	n, err := s.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 2 {
		t.Fatalf("synced %d contacts, want 2", n)
	}

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stored %d contacts, want 2", len(got))
	}
	if got[0].DisplayName != "Ayse Demir" || got[0].SIPAddress != "sip:1001" {
		t.Errorf("first contact = %+v", got[0])
	}
	if got[0].GSM != "05551112233" {
		t.Errorf("gsm = %q", got[0].GSM)
	}
}

func TestSyncRefreshesExistingExtensions(t *testing.T) {
	name := "Ayse Demir"
	srv := directoryServer(t, func(w http.ResponseWriter, req directoryRequest) {
		json.NewEncoder(w).Encode(map[string]any{
			"type":   "success",
			"values": []map[string]string{{"user_adi": name, "dahili_no": "1001"}},
		})
	})

	repo := repository.NewContactRepo(testDB(t))
	s := NewSyncer(srv.URL, "admin@pbx", "pw", repo)

	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	name = "Ayse Yilmaz" // renamed upstream
	if _, err := s.Sync(context.Background()); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("stored %d contacts, want 1 after re-sync", len(got))
	}
	if got[0].DisplayName != "Ayse Yilmaz" {
		t.Errorf("display name = %q, want the refreshed one", got[0].DisplayName)
	}
}

func TestSyncRefused(t *testing.T) {
	srv := directoryServer(t, func(w http.ResponseWriter, req directoryRequest) {
		json.NewEncoder(w).Encode(map[string]any{"type": "error", "desc": "yetkisiz"})
	})

	s := NewSyncer(srv.URL, "admin@pbx", "pw", repository.NewContactRepo(testDB(t)))
	if _, err := s.Sync(context.Background()); err == nil {
		t.Fatal("want error when the panel refuses")
	}
}
