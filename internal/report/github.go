// go-server/internal/report/github.go
//
// Report upload to a GitHub repository via the contents API.
//
// Configuration order (ConfigFromEnv):
//   1. GITHUB_TOKEN (+ optional GITHUB_OWNER/GITHUB_REPO/GITHUB_BRANCH).
//   2. A token from the local `gh auth token` CLI, with the default
//      owner/repo/branch.
//   3. Nothing configured: uploads are unavailable (nil config).
//
// Secrets pasted with wrapping quotes are common in classroom setups, so
// every value goes through sanitizeSecret.
//
// Authentication: the contents API accepts "Bearer" for modern tokens;
// classic PATs sometimes only work with the "token" scheme, so a 401 on
// the first attempt triggers one retry with the legacy scheme.

package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultGitHubOwner  = "IrgoMallis"
	defaultGitHubRepo   = "cybercommand-missao-teclado"
	defaultGitHubBranch = "master"
	uploadDir           = "relatorios-cybercommand"

	githubAPIVersion = "2022-11-28"
	ghTokenTimeout   = 5 * time.Second
)

// GitHubConfig is a resolved upload destination.
type GitHubConfig struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
}

// ConfigFromEnv resolves the upload configuration, or nil when no token
// can be found anywhere.
func ConfigFromEnv() *GitHubConfig {
	if token := sanitizeSecret(os.Getenv("GITHUB_TOKEN")); token != "" {
		return &GitHubConfig{
			Owner:  envOr("GITHUB_OWNER", defaultGitHubOwner),
			Repo:   envOr("GITHUB_REPO", defaultGitHubRepo),
			Branch: envOr("GITHUB_BRANCH", defaultGitHubBranch),
			Token:  token,
		}
	}
	if token := ghCLIToken(); token != "" {
		return &GitHubConfig{
			Owner:  defaultGitHubOwner,
			Repo:   defaultGitHubRepo,
			Branch: defaultGitHubBranch,
			Token:  token,
		}
	}
	return nil
}

// envOr reads and sanitizes an environment variable with a fallback.
func envOr(key, def string) string {
	if v := sanitizeSecret(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// ghCLIToken asks the local gh CLI for a token, best-effort.
func ghCLIToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), ghTokenTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return sanitizeSecret(string(out))
}

// sanitizeSecret trims whitespace and one layer of wrapping quotes.
func sanitizeSecret(v string) string {
	cleaned := strings.TrimSpace(v)
	if len(cleaned) >= 2 && isQuote(cleaned[0]) && isQuote(cleaned[len(cleaned)-1]) {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
	}
	return cleaned
}

func isQuote(b byte) bool { return b == '\'' || b == '"' }

// Uploader pushes report PDFs to the configured repository.
type Uploader struct {
	cfg GitHubConfig
	hc  *http.Client

	// BaseURL is the API root, replaceable in tests.
	BaseURL string
}

// NewUploader builds an uploader for one destination.
func NewUploader(cfg GitHubConfig) *Uploader {
	return &Uploader{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 30 * time.Second},
		BaseURL: "https://api.github.com",
	}
}

// Upload commits the PDF under the reports directory and returns the
// html_url of the created file (may be empty when the API omits it).
func (u *Uploader) Upload(ctx context.Context, pdfBytes []byte, filename string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s/%s",
		u.BaseURL, u.cfg.Owner, u.cfg.Repo, uploadDir, filename)

	branch := u.cfg.Branch
	if branch == "" {
		branch = "main"
	}
	payload, err := json.Marshal(map[string]string{
		"message": fmt.Sprintf("docs: adiciona relatorio %s", filename),
		"content": base64.StdEncoding.EncodeToString(pdfBytes),
		"branch":  branch,
	})
	if err != nil {
		return "", err
	}

	resp, err := u.put(ctx, url, payload, "Bearer "+u.cfg.Token)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Classic PATs want the legacy scheme.
		resp.Body.Close()
		resp, err = u.put(ctx, url, payload, "token "+u.cfg.Token)
		if err != nil {
			return "", err
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("github api %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Content struct {
			HTMLURL string `json:"html_url"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("github response: %w", err)
	}
	return out.Content.HTMLURL, nil
}

func (u *Uploader) put(ctx context.Context, url string, body []byte, auth string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	return u.hc.Do(req)
}
