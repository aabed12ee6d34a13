package account

import (
	"context"

	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/orchestrator"
)

// CredentialStore persists the provisioned account for the next start.
type CredentialStore interface {
	SaveAccount(acct engine.Account) error
}

// LoginService runs the login flow: provision off-thread, register with the
// engine, report everything back to the orchestrator as generation-tagged
// registration signals. A second login for the same account supersedes the
// first; the superseded attempt's late callbacks are dropped at the loop.
type LoginService struct {
	Provision *Client
	Engine    engine.Engine
	Store     CredentialStore
	Tracker   *Tracker
	Transport string // defaults to tls
	Post      func(orchestrator.Signal)
}

// Login starts one attempt and returns immediately. accountRef is the
// portal email; it identifies the attempt, not its contents.
func (s *LoginService) Login(ctx context.Context, email, password string) {
	gen := s.Tracker.Begin(email)
	s.post(orchestrator.RegistrationChanged{AccountRef: email, Phase: engine.RegPending, Gen: gen})

	go func() {
		sip, err := s.Provision.FetchAccount(ctx, email, password)
		if err != nil {
			s.post(orchestrator.RegistrationChanged{
				AccountRef: email, Phase: engine.RegFailed, Message: err.Error(), Gen: gen,
			})
			return
		}

		transport := s.Transport
		if transport == "" {
			transport = "tls"
		}
		acct := engine.Account{
			Ref:       email,
			Username:  sip.Username,
			Password:  sip.Password,
			Domain:    sip.Host,
			Port:      sip.Port,
			Transport: transport,
		}
		if s.Store != nil {
			if err := s.Store.SaveAccount(acct); err != nil {
				// Persistence failure is not fatal to the registration.
				s.post(orchestrator.RegistrationChanged{
					AccountRef: email, Phase: engine.RegPending,
					Message: "credentials not saved: " + err.Error(), Gen: gen,
				})
			}
		}
		if err := s.Engine.Register(acct); err != nil {
			s.post(orchestrator.RegistrationChanged{
				AccountRef: email, Phase: engine.RegFailed, Message: err.Error(), Gen: gen,
			})
			return
		}
		// From here the engine's own registration events carry the outcome;
		// the loop tags them with the account's live generation.
	}()
}

func (s *LoginService) post(sig orchestrator.Signal) {
	if s.Post != nil {
		s.Post(sig)
	}
}
