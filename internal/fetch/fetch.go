// Package fetch retrieves template markup over HTTP or from a local
// directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// maxBody caps the size of a fetched template.
const maxBody = 1 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// TooLargeError is returned when a template exceeds the size limit.
type TooLargeError struct {
	URL   string
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("template %s is larger than %d bytes", e.URL, e.Limit)
}

// HTTP fetches templates with an http.Client. Relative references are
// resolved against BaseURL when it is set.
type HTTP struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTP creates an HTTP fetcher with a bounded client timeout.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		Client:  &http.Client{Timeout: 15 * time.Second},
		BaseURL: baseURL,
	}
}

// Get implements modalsvc.Fetcher.
func (h *HTTP) Get(ctx context.Context, ref string) (string, error) {
	target, err := h.resolve(ref)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/markdown, text/plain, text/html;q=0.9, */*;q=0.5")

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	if len(body) > maxBody {
		return "", &TooLargeError{URL: target, Limit: maxBody}
	}
	return string(body), nil
}

func (h *HTTP) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse template url: %w", err)
	}
	if u.IsAbs() || h.BaseURL == "" {
		return ref, nil
	}
	base, err := url.Parse(h.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(u).String(), nil
}

// Dir reads templates from a directory.
type Dir struct {
	fsys fs.FS
}

// NewDir creates a fetcher rooted at dir.
func NewDir(dir string) *Dir {
	return &Dir{fsys: os.DirFS(dir)}
}

// NewFS creates a fetcher over fsys.
func NewFS(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// Get implements modalsvc.Fetcher. ref is a slash-separated path relative
// to the root, optionally prefixed with "file:".
func (d *Dir) Get(_ context.Context, ref string) (string, error) {
	name := path.Clean(strings.TrimPrefix(strings.TrimPrefix(ref, "file:"), "/"))
	data, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Mux routes http(s) references to Remote and everything else to Local.
type Mux struct {
	Remote *HTTP
	Local  *Dir
}

// Get implements modalsvc.Fetcher.
func (m *Mux) Get(ctx context.Context, ref string) (string, error) {
	if isRemote(ref) || m.Local == nil {
		if m.Remote == nil {
			return "", fmt.Errorf("no remote fetcher for %s", ref)
		}
		return m.Remote.Get(ctx, ref)
	}
	if m.Remote != nil && m.Remote.BaseURL != "" && !strings.HasPrefix(ref, "file:") {
		if _, err := fs.Stat(m.Local.fsys, path.Clean(strings.TrimPrefix(ref, "/"))); err != nil {
			return m.Remote.Get(ctx, ref)
		}
	}
	return m.Local.Get(ctx, ref)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
