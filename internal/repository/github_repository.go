package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/status-portal/internal/config"
	"github.com/spec-kit/status-portal/internal/domain"
)

// GitHubRepository round-trips the document through a repository's contents API.
// The blob sha is the revision token; a write with a stale sha is rejected remotely.
type GitHubRepository struct {
	cfg    config.GitHubConfig
	client *http.Client
}

type githubContent struct {
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type githubPutRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type githubPutResponse struct {
	Content githubContent `json:"content"`
}

// NewGitHubRepository builds the repository. A nil client gets a bounded default.
func NewGitHubRepository(cfg config.GitHubConfig, client *http.Client) *GitHubRepository {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &GitHubRepository{cfg: cfg, client: client}
}

func (r *GitHubRepository) Name() string { return "github" }

func (r *GitHubRepository) Load(ctx context.Context) (*Snapshot, error) {
	endpoint := r.contentsURL()
	if r.cfg.Branch != "" {
		endpoint += "?ref=" + url.QueryEscape(r.cfg.Branch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build contents request: %w", err)
	}
	r.decorate(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, unavailable("github load", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &Snapshot{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable("github load", statusError(resp))
	}

	var content githubContent
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, unavailable("github load", err)
	}
	var raw []byte
	switch content.Encoding {
	case "", "base64":
		raw, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	case "none":
		// files over 1 MB come back without inline content
		raw, err = r.loadBlob(ctx, content.SHA)
	default:
		err = fmt.Errorf("unsupported content encoding %q", content.Encoding)
	}
	if err != nil {
		return nil, unavailable("github load", err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, unavailable("github load", err)
	}
	return &Snapshot{Document: doc, Revision: content.SHA, Exists: true}, nil
}

func (r *GitHubRepository) Save(ctx context.Context, doc *domain.LiveDataDocument, expectedRevision string) (string, error) {
	raw, err := encodeDocument(doc)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(githubPutRequest{
		Message: fmt.Sprintf("chore(%s): update live data", r.cfg.Committer),
		Content: base64.StdEncoding.EncodeToString(raw),
		Branch:  r.cfg.Branch,
		SHA:     expectedRevision,
	})
	if err != nil {
		return "", fmt.Errorf("encode contents request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.contentsURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build contents request: %w", err)
	}
	r.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", unavailable("github save", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode == http.StatusConflict:
		return "", ErrConflict
	case resp.StatusCode == http.StatusUnprocessableEntity && expectedRevision == "":
		// the file appeared since our read; the API insists on a sha
		return "", ErrConflict
	default:
		return "", unavailable("github save", statusError(resp))
	}

	var out githubPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", unavailable("github save", err)
	}
	return out.Content.SHA, nil
}

// loadBlob fetches the raw bytes of a blob by sha, so the body always matches
// the revision returned alongside it.
func (r *GitHubRepository) loadBlob(ctx context.Context, sha string) ([]byte, error) {
	if sha == "" {
		return nil, fmt.Errorf("content without inline body has no sha")
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/blobs/%s",
		r.cfg.APIURL, url.PathEscape(r.cfg.Owner), url.PathEscape(r.cfg.Repo), url.PathEscape(sha))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build blob request: %w", err)
	}
	r.decorate(req)
	req.Header.Set("Accept", "application/vnd.github.raw+json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (r *GitHubRepository) contentsURL() string {
	path := strings.TrimLeft(r.cfg.Path, "/")
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		r.cfg.APIURL, url.PathEscape(r.cfg.Owner), url.PathEscape(r.cfg.Repo), path)
}

func (r *GitHubRepository) decorate(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "status-portal")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
