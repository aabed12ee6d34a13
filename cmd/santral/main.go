package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/okurt/santral/internal/account"
	"github.com/okurt/santral/internal/config"
	"github.com/okurt/santral/internal/contacts"
	"github.com/okurt/santral/internal/database"
	"github.com/okurt/santral/internal/database/repository"
	"github.com/okurt/santral/internal/dispatch"
	"github.com/okurt/santral/internal/engine"
	"github.com/okurt/santral/internal/engine/enginetest"
	"github.com/okurt/santral/internal/orchestrator"
	"github.com/okurt/santral/internal/secrets"
	"github.com/okurt/santral/internal/tui"
)

const historyRetention = 90 * 24 * time.Hour

func main() {
	var (
		demo     = flag.Bool("demo", false, "play a scripted call instead of registering")
		email    = flag.String("email", "", "portal login email (provisions a SIP account)")
		password = flag.String("password", os.Getenv("SANTRAL_PASSWORD"), "portal login password")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// The terminal owns stdout; diagnostics go to a log file next to the db.
	diag := openDiagLog(cfg.Database.Path)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	contactRepo := repository.NewContactRepo(db)
	callRepo := repository.NewCallLogRepo(db)
	if n, err := callRepo.PruneBefore(ctx, time.Now().Add(-historyRetention)); err != nil {
		diag("prune call log: %v", err)
	} else if n > 0 {
		diag("pruned %d call log rows", n)
	}

	store := &secrets.Store{}
	tracker := account.NewTracker()

	// The engine is a scripted fake until a SIP stack binding lands; it
	// honors the full command surface either way.
	eng := enginetest.New()
	defer eng.Close()

	// Post is the single entry point into the orchestrator queue. The loop
	// variable is assigned before anything can call it.
	var loop *orchestrator.Loop
	post := func(sig orchestrator.Signal) { loop.Post(sig) }

	var syncer tui.DirectorySyncer
	if *email != "" && *password != "" {
		syncer = contacts.NewSyncer(cfg.Directory.URL, *email, *password, contactRepo)
	}

	model := tui.New(tui.Options{
		Post:         post,
		Theme:        cfg.UI.Theme,
		Contacts:     contactRepo,
		History:      callRepo,
		Syncer:       syncer,
		QuitOnFinish: *demo,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	disp := dispatch.New(dispatch.Sinks{
		Engine:      eng,
		Presenter:   tui.NewPresenter(p.Send),
		Permissions: dispatch.StaticPermissions{Camera: true, Microphone: true},
		PiP:         dispatch.PiPGate{Enabled: cfg.UI.PiPEnabled},
		History:     &historyWriter{ctx: ctx, repo: callRepo},
		Post:        post,
		Diag:        diag,
	})

	loop = orchestrator.NewLoop(orchestrator.Config{
		Dispatcher: disp,
		Ready:      eng.Ready(),
		Accepts:    tracker.Accepts,
		Diag:       diag,
	})

	go func() {
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			diag("loop: %v", err)
		}
	}()
	loop.Pump(ctx, eng, tracker.Current)

	switch {
	case *demo:
		eng.PlayDemo()
	case *email != "" && *password != "":
		svc := &account.LoginService{
			Provision: account.NewClient(cfg.Provisioning.URL),
			Engine:    eng,
			Store:     store,
			Tracker:   tracker,
			Transport: cfg.Engine.Transport,
			Post:      post,
		}
		svc.Login(ctx, *email, *password)
	default:
		registerStored(eng, store, tracker, diag)
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
	cancel()
}

// registerStored re-registers accounts provisioned on an earlier run.
func registerStored(eng engine.Engine, store *secrets.Store, tracker *account.Tracker, diag func(string, ...any)) {
	refs, err := store.Refs()
	if err != nil {
		diag("secrets: %v", err)
		return
	}
	for _, ref := range refs {
		acct, err := store.FetchAccount(ref)
		if err != nil {
			diag("secrets %s: %v", ref, err)
			continue
		}
		tracker.Begin(ref)
		if err := eng.Register(acct); err != nil {
			diag("register %s: %v", ref, err)
		}
	}
}

func openDiagLog(dbPath string) func(format string, args ...any) {
	path := filepath.Join(filepath.Dir(dbPath), "santral.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func(string, ...any) {}
	}
	logger := log.New(f, "", log.LstdFlags)
	return func(format string, args ...any) { logger.Printf(format, args...) }
}

// historyWriter adapts the call log repository to the dispatcher's sink.
type historyWriter struct {
	ctx  context.Context
	repo *repository.CallLogRepo
}

func (h *historyWriter) Record(rec orchestrator.CallRecord) error {
	direction := "outgoing"
	if rec.Incoming {
		direction = "incoming"
	}
	entry := repository.CallEntry{
		SessionID: rec.SessionID,
		Remote:    rec.Remote,
		Direction: direction,
		Outcome:   rec.Outcome,
	}
	if !rec.Started.IsZero() {
		t := rec.Started
		entry.StartedAt = &t
	}
	if !rec.Connected.IsZero() {
		t := rec.Connected
		entry.ConnectedAt = &t
	}
	if !rec.Ended.IsZero() {
		t := rec.Ended
		entry.EndedAt = &t
	}
	return h.repo.Insert(h.ctx, entry)
}
