package persist

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultGitHubAPI is the public GitHub REST endpoint.
const DefaultGitHubAPI = "https://api.github.com"

// APIError is a non-success response from the GitHub API that is neither a
// missing file nor a conflict.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api error: status %d", e.Status)
	}
	return fmt.Sprintf("github api error: status %d: %s", e.Status, e.Message)
}

// GitHub stores the plan in a repository file through the contents API.
//
// The blob sha returned by the last Load or Save is sent with the next Save.
// If someone else committed the file in between, GitHub rejects the write
// and Save returns ErrConflict.
type GitHub struct {
	client   *http.Client
	baseURL  string
	token    string
	settings Settings
	now      func() time.Time

	mu  sync.Mutex
	sha string
}

// NewGitHub returns a store for the file described by settings. A nil client
// uses http.DefaultClient; an empty baseURL uses DefaultGitHubAPI.
func NewGitHub(baseURL, token string, settings Settings, client *http.Client) *GitHub {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultGitHubAPI
	}
	return &GitHub{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		settings: settings.WithDefaults(),
		now:      time.Now,
	}
}

// Name implements Store.
func (g *GitHub) Name() string {
	return "github"
}

// Settings returns the target file.
func (g *GitHub) Settings() Settings {
	return g.settings
}

// Revision returns the blob sha the next Save will be based on.
func (g *GitHub) Revision() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sha
}

type contentsResponse struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Load fetches the file and remembers its sha.
func (g *GitHub) Load(ctx context.Context) (Content, error) {
	body, err := g.fetch(ctx)
	if err != nil {
		return Content{}, err
	}

	if body.Encoding != "" && body.Encoding != "base64" {
		return Content{}, fmt.Errorf("github contents: unsupported encoding %q", body.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return Content{}, fmt.Errorf("decode github content: %w", err)
	}

	g.mu.Lock()
	g.sha = body.SHA
	g.mu.Unlock()

	return Content{Text: string(data), Revision: body.SHA}, nil
}

// Save commits text to the configured branch. When no sha is known yet the
// current one is fetched first; a file that does not exist is created.
// A conflict keeps the known sha, so later saves conflict too until Load
// picks up the remote file.
func (g *GitHub) Save(ctx context.Context, text string) error {
	g.mu.Lock()
	sha := g.sha
	g.mu.Unlock()

	if sha == "" {
		body, err := g.fetch(ctx)
		switch {
		case err == nil:
			sha = body.SHA
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}
	}

	payload, err := json.Marshal(putRequest{
		Message: g.settings.CommitMessage,
		Content: base64.StdEncoding.EncodeToString([]byte(text)),
		SHA:     sha,
		Branch:  g.settings.Branch,
	})
	if err != nil {
		return fmt.Errorf("encode github request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build github request: %w", err)
	}
	g.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("github save: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrConflict, readMessage(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	var out putResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode github response: %w", err)
	}

	g.mu.Lock()
	g.sha = out.Content.SHA
	g.mu.Unlock()
	return nil
}

func (g *GitHub) fetch(ctx context.Context) (contentsResponse, error) {
	u := g.contentsURL() + "?" + url.Values{
		"ref": {g.settings.Branch},
		"t":   {strconv.FormatInt(g.now().UnixMilli(), 10)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return contentsResponse{}, fmt.Errorf("build github request: %w", err)
	}
	g.authorize(req)
	req.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	req.Header.Set("Pragma", "no-cache")

	resp, err := g.client.Do(req)
	if err != nil {
		return contentsResponse{}, fmt.Errorf("github load: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return contentsResponse{}, fmt.Errorf("%w: %s/%s/%s", ErrNotFound, g.settings.Owner, g.settings.Repo, g.settings.Path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return contentsResponse{}, &APIError{Status: resp.StatusCode, Message: readMessage(resp.Body)}
	}

	var body contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return contentsResponse{}, fmt.Errorf("decode github response: %w", err)
	}
	return body, nil
}

func (g *GitHub) contentsURL() string {
	segments := strings.Split(strings.Trim(g.settings.Path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.baseURL,
		url.PathEscape(g.settings.Owner),
		url.PathEscape(g.settings.Repo),
		strings.Join(segments, "/"),
	)
}

func (g *GitHub) authorize(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}

// readMessage extracts the "message" field of a GitHub error body, falling
// back to the raw text.
func readMessage(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		return body.Message
	}
	return strings.TrimSpace(string(data))
}
