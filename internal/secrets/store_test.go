package secrets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okurt/santral/internal/engine"
)

func testAccount() engine.Account {
	return engine.Account{
		Ref:       "user@pbx",
		Username:  "1001",
		Password:  "sippass",
		Domain:    "pbx.local",
		Port:      "5061",
		Transport: "tls",
	}
}

func TestSaveAndFetchRoundTrip(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	if err := s.SaveAccount(testAccount()); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	got, err := s.FetchAccount("User@PBX") // ref lookup is case-insensitive
	if err != nil {
		t.Fatalf("FetchAccount: %v", err)
	}
	if want := testAccount(); got != want {
		t.Fatalf("account = %+v, want %+v", got, want)
	}
}

func TestSaveReplacesPreviousEntry(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	if err := s.SaveAccount(testAccount()); err != nil {
		t.Fatalf("first save: %v", err)
	}
	updated := testAccount()
	updated.Password = "rotated"
	if err := s.SaveAccount(updated); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := s.FetchAccount("user@pbx")
	if err != nil {
		t.Fatalf("FetchAccount: %v", err)
	}
	if got.Password != "rotated" {
		t.Fatalf("password = %q, want the replaced entry", got.Password)
	}
	refs, err := s.Refs()
	if err != nil {
		t.Fatalf("Refs: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("refs = %v, want a single entry", refs)
	}
}

func TestDeleteAccountIsIdempotent(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	if err := s.SaveAccount(testAccount()); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	if err := s.DeleteAccount("user@pbx"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := s.DeleteAccount("user@pbx"); err != nil {
		t.Fatalf("second DeleteAccount: %v", err)
	}
	if _, err := s.FetchAccount("user@pbx"); err == nil {
		t.Fatal("want error fetching a deleted account")
	}
}

func TestFileNeverHoldsPlainCredentials(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: dir}
	if err := s.SaveAccount(testAccount()); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	path := filepath.Join(dir, "accounts.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	if strings.Contains(string(data), "sippass") {
		t.Fatal("SIP password written in plain text")
	}
	var sf secretFile
	if err := json.Unmarshal(data, &sf); err != nil {
		t.Fatalf("store file is not valid json: %v", err)
	}
	if _, ok := sf.Accounts["user@pbx"]; !ok {
		t.Fatalf("accounts = %v, want normalized ref key", sf.Accounts)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("file mode = %o, want 0600", perm)
	}
}
