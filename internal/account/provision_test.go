package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func provisionServer(t *testing.T, respond func(w http.ResponseWriter, req provisionRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req provisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		respond(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAccountSuccess(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		if req.Action != "dahili_bilgi" {
			t.Errorf("action = %q, want dahili_bilgi", req.Action)
		}
		if req.Email != "user@pbx" || req.Password != "hunter2" {
			t.Errorf("credentials = %q / %q", req.Email, req.Password)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"type": "success",
			"values": map[string]string{
				"as_dahili":    "1001",
				"sifre":        "sippass",
				"santral_ip":   "10.0.0.5",
				"santral_port": "5061",
			},
		})
	})

	acct, err := NewClient(srv.URL).FetchAccount(context.Background(), "user@pbx", "hunter2")
	if err != nil {
		t.Fatalf("FetchAccount: %v", err)
	}
	want := SIPAccount{Username: "1001", Password: "sippass", Host: "10.0.0.5", Port: "5061"}
	if acct != want {
		t.Fatalf("account = %+v, want %+v", acct, want)
	}
}

func TestFetchAccountRejection(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		json.NewEncoder(w).Encode(map[string]any{"type": "error", "desc": "wrong password"})
	})

	_, err := NewClient(srv.URL).FetchAccount(context.Background(), "user@pbx", "nope")
	if err == nil {
		t.Fatal("want error on rejected credentials")
	}
}

func TestFetchAccountIncompleteResponse(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		json.NewEncoder(w).Encode(map[string]any{"type": "success", "values": map[string]string{"sifre": "x"}})
	})

	_, err := NewClient(srv.URL).FetchAccount(context.Background(), "user@pbx", "pw")
	if err == nil {
		t.Fatal("want error on response without extension and host")
	}
}

func TestFetchAccountHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchAccount(context.Background(), "user@pbx", "pw")
	if err == nil {
		t.Fatal("want error on http failure")
	}
}
