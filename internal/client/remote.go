package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/MrSnakeDoc/navspec/internal/domain"
	"github.com/MrSnakeDoc/navspec/internal/utils"
)

const (
	userConfigPath  = "/api/user-config"
	configPath      = "/api/config"
	preferencesPath = "/api/preferences"

	// maxBodyBytes caps how much of a response is decoded.
	maxBodyBytes = 8 << 20
)

// Backend is what the controller needs from the configuration service.
type Backend interface {
	LoadPreferences(ctx context.Context) (domain.UserConfig, error)
	LoadConfig(ctx context.Context, name string) (domain.Configuration, error)
	SavePreferences(ctx context.Context, prefs domain.UserPreferences) error
}

// Remote talks to a navspec backend over HTTP.
//
// No timeout is applied: a call lasts as long as its context allows.
type Remote struct {
	base   *url.URL
	client *http.Client
}

// NewRemote builds a client for the backend at baseURL
// (ex: "http://127.0.0.1:7777"). A nil client means http.DefaultClient.
func NewRemote(baseURL string, client *http.Client) (*Remote, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{base: u, client: client}, nil
}

// LoadPreferences fetches the user's preferences and the list of available
// configurations in a single read.
func (r *Remote) LoadPreferences(ctx context.Context) (domain.UserConfig, error) {
	const op = "load preferences"

	var uc domain.UserConfig
	if err := r.get(ctx, op, r.endpoint(userConfigPath, nil), &uc); err != nil {
		return domain.UserConfig{}, err
	}
	return uc, nil
}

// LoadConfig fetches a dashboard configuration. An empty name asks the
// backend for its active configuration.
func (r *Remote) LoadConfig(ctx context.Context, name string) (domain.Configuration, error) {
	const op = "load config"

	var q url.Values
	if name != "" {
		q = url.Values{"config_name": {name}}
	}

	var cfg domain.Configuration
	if err := r.get(ctx, op, r.endpoint(configPath, q), &cfg); err != nil {
		return domain.Configuration{}, err
	}
	return cfg, nil
}

// SavePreferences writes the full preference object.
func (r *Remote) SavePreferences(ctx context.Context, prefs domain.UserPreferences) error {
	const op = "save preferences"

	body, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%s: failed to encode preferences: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint(preferencesPath, nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer utils.DrainClose(resp.Body)

	return checkStatus(op, resp)
}

func (r *Remote) get(ctx context.Context, op, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer utils.DrainClose(resp.Body)

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

func (r *Remote) endpoint(path string, q url.Values) string {
	u := *r.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = q.Encode()
	return u.String()
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return &HTTPStatusError{Op: op, Code: resp.StatusCode, Text: text}
}
