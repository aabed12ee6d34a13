package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Provisioning client for the PBX panel API. One POST per exchange: the
// panel resolves portal credentials into the SIP extension account. Field
// names follow the panel's wire format.

type provisionRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"sifre"`
}

type provisionResponse struct {
	Type   string     `json:"type"`
	Desc   string     `json:"desc"`
	Values sipAccount `json:"values"`
}

type sipAccount struct {
	Extension string `json:"as_dahili"`
	Password  string `json:"sifre"`
	Host      string `json:"santral_ip"`
	Port      string `json:"santral_port"`
}

// Client talks to the provisioning endpoint.
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	return &Client{URL: url, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// SIPAccount is the provisioned identity handed to the engine.
type SIPAccount struct {
	Username string
	Password string
	Host     string
	Port     string
}

// FetchAccount exchanges portal credentials for the SIP account. Runs off
// the orchestrator thread; callers report the outcome as a registration
// signal, never by blocking the loop.
func (c *Client) FetchAccount(ctx context.Context, email, password string) (SIPAccount, error) {
	body, err := json.Marshal(provisionRequest{Action: "dahili_bilgi", Email: email, Password: password})
	if err != nil {
		return SIPAccount{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return SIPAccount{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return SIPAccount{}, fmt.Errorf("provisioning call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SIPAccount{}, fmt.Errorf("provisioning call: %s", resp.Status)
	}

	var pr provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return SIPAccount{}, fmt.Errorf("decode response: %w", err)
	}
	if pr.Type != "success" {
		if pr.Desc != "" {
			return SIPAccount{}, fmt.Errorf("invalid credentials: %s", pr.Desc)
		}
		return SIPAccount{}, fmt.Errorf("invalid credentials")
	}
	if pr.Values.Extension == "" || pr.Values.Host == "" {
		return SIPAccount{}, fmt.Errorf("incomplete provisioning response")
	}
	return SIPAccount{
		Username: pr.Values.Extension,
		Password: pr.Values.Password,
		Host:     pr.Values.Host,
		Port:     pr.Values.Port,
	}, nil
}
