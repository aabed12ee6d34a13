package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okurt/santral/internal/database/repository"
)

// Directory sync against the PBX panel. One POST fetches the full extension
// list; entries are upserted into the local contacts table. Field names
// follow the panel's wire format.

type directoryRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"sifre"`
}

type directoryEntry struct {
	Name      string `json:"user_adi"`
	Extension string `json:"dahili_no"`
	GSM       string `json:"gsm"`
}

type directoryResponse struct {
	Type   string           `json:"type"`
	Desc   string           `json:"desc"`
	Values []directoryEntry `json:"values"`
}

// Syncer fetches the remote directory and mirrors it locally.
type Syncer struct {
	URL      string
	Email    string
	Password string
	HTTP     *http.Client
	Repo     *repository.ContactRepo
}

func NewSyncer(url, email, password string, repo *repository.ContactRepo) *Syncer {
	return &Syncer{
		URL:      url,
		Email:    email,
		Password: password,
		HTTP:     &http.Client{Timeout: 20 * time.Second},
		Repo:     repo,
	}
}

// Sync fetches the directory and upserts every entry. Returns the number of
// contacts written. Runs off the orchestrator thread; the caller reports
// the outcome as a toast.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	body, err := json.Marshal(directoryRequest{Action: "dahili_liste", Email: s.Email, Password: s.Password})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	httpClient := s.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("directory call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("directory call: %s", resp.Status)
	}

	var dr directoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if dr.Type != "success" {
		if dr.Desc != "" {
			return 0, fmt.Errorf("directory refused: %s", dr.Desc)
		}
		return 0, fmt.Errorf("directory refused")
	}

	n := 0
	for _, e := range dr.Values {
		if e.Name == "" && e.Extension == "" {
			continue
		}
		c := repository.Contact{
			DisplayName: e.Name,
			Extension:   e.Extension,
			GSM:         e.GSM,
		}
		if e.Extension != "" {
			c.SIPAddress = "sip:" + e.Extension
		}
		if err := s.Repo.Upsert(ctx, c); err != nil {
			return n, fmt.Errorf("upsert %q: %w", e.Name, err)
		}
		n++
	}
	return n, nil
}
