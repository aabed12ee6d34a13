package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/engine/enginetest"
	"github.com/okurt/santral/internal/orchestrator"
)

type saveRecorder struct {
	saved []engine.Account
	err   error
}

func (s *saveRecorder) SaveAccount(acct engine.Account) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, acct)
	return nil
}

func collectRegistrations(t *testing.T, sigs <-chan orchestrator.Signal, n int) []orchestrator.RegistrationChanged {
	t.Helper()
	var out []orchestrator.RegistrationChanged
	for len(out) < n {
		select {
		case sig := <-sigs:
			rc, ok := sig.(orchestrator.RegistrationChanged)
			if !ok {
				t.Fatalf("unexpected signal %T", sig)
			}
			out = append(out, rc)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for signal %d of %d", len(out)+1, n)
		}
	}
	return out
}

func TestLoginProvisionsAndRegisters(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		json.NewEncoder(w).Encode(map[string]any{
			"type": "success",
			"values": map[string]string{
				"as_dahili": "2002", "sifre": "pw", "santral_ip": "pbx.local", "santral_port": "5061",
			},
		})
	})

	eng := enginetest.New()
	store := &saveRecorder{}
	sigs := make(chan orchestrator.Signal, 8)
	svc := &LoginService{
		Provision: NewClient(srv.URL),
		Engine:    eng,
		Store:     store,
		Tracker:   NewTracker(),
		Post:      func(sig orchestrator.Signal) { sigs <- sig },
	}

	svc.Login(context.Background(), "user@pbx", "portal-pw")

	got := collectRegistrations(t, sigs, 1)
	if got[0].Phase != engine.RegPending || got[0].Gen != 1 {
		t.Fatalf("first signal = %+v, want pending gen 1", got[0])
	}

	deadline := time.After(2 * time.Second)
	for len(eng.Commands()) == 0 {
		select {
		case <-deadline:
			t.Fatal("engine never saw the register command")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if cmd := eng.Commands()[0]; cmd != "register 2002@pbx.local" {
		t.Fatalf("command = %q", cmd)
	}
	if len(store.saved) != 1 || store.saved[0].Ref != "user@pbx" {
		t.Fatalf("saved accounts = %+v", store.saved)
	}
	if store.saved[0].Transport != "tls" {
		t.Fatalf("transport = %q, want tls", store.saved[0].Transport)
	}
}

func TestLoginProvisionFailureReportsGeneration(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		json.NewEncoder(w).Encode(map[string]any{"type": "error", "desc": "kullanici bulunamadi"})
	})

	tracker := NewTracker()
	tracker.Begin("user@pbx") // a prior attempt this login supersedes
	sigs := make(chan orchestrator.Signal, 8)
	svc := &LoginService{
		Provision: NewClient(srv.URL),
		Engine:    enginetest.New(),
		Tracker:   tracker,
		Post:      func(sig orchestrator.Signal) { sigs <- sig },
	}

	svc.Login(context.Background(), "user@pbx", "bad")

	got := collectRegistrations(t, sigs, 2)
	if got[0].Phase != engine.RegPending || got[0].Gen != 2 {
		t.Fatalf("first signal = %+v, want pending gen 2", got[0])
	}
	if got[1].Phase != engine.RegFailed || got[1].Gen != 2 || got[1].Message == "" {
		t.Fatalf("second signal = %+v, want tagged failure", got[1])
	}
}

func TestLoginSaveFailureIsNotFatal(t *testing.T) {
	srv := provisionServer(t, func(w http.ResponseWriter, req provisionRequest) {
		json.NewEncoder(w).Encode(map[string]any{
			"type": "success",
			"values": map[string]string{
				"as_dahili": "2002", "sifre": "pw", "santral_ip": "pbx.local", "santral_port": "5061",
			},
		})
	})

	eng := enginetest.New()
	sigs := make(chan orchestrator.Signal, 8)
	svc := &LoginService{
		Provision: NewClient(srv.URL),
		Engine:    eng,
		Store:     &saveRecorder{err: fmt.Errorf("disk full")},
		Tracker:   NewTracker(),
		Post:      func(sig orchestrator.Signal) { sigs <- sig },
	}

	svc.Login(context.Background(), "user@pbx", "portal-pw")

	got := collectRegistrations(t, sigs, 2)
	if got[1].Phase != engine.RegPending || got[1].Message == "" {
		t.Fatalf("save failure signal = %+v, want pending with message", got[1])
	}

	deadline := time.After(2 * time.Second)
	for len(eng.Commands()) == 0 {
		select {
		case <-deadline:
			t.Fatal("registration should proceed despite the save failure")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
