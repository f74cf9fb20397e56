// Package github is a minimal client for the few GitHub REST operations
// the export pipeline needs: token exchange, identity lookup, repository
// creation, and contents upserts. It is not a general API binding.
package github

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
	"strings"
	"time"
)

const (
	defaultAPIBase  = "https://api.github.com"
	defaultAuthBase = "https://github.com"
)

// User is the authenticated identity behind a credential.
type User struct {
	Login string `json:"login"`
}

// Repo is a freshly created remote repository.
type Repo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// OAuthApp exchanges authorization codes for access tokens. It holds the
// app registration, not a user credential.
type OAuthApp struct {
	http         *http.Client
	clientID     string
	clientSecret string
	authBase     string
}

func NewOAuthApp(clientID, clientSecret string) *OAuthApp {
	return &OAuthApp{
		http:         &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		authBase:     defaultAuthBase,
	}
}

// Configured reports whether the app registration is usable.
func (a *OAuthApp) Configured() bool {
	return a != nil && strings.TrimSpace(a.clientID) != "" && strings.TrimSpace(a.clientSecret) != ""
}

// AuthorizeURL builds the user-facing authorization URL embedding the
// state token and callback address.
func (a *OAuthApp) AuthorizeURL(state, redirectURL string) string {
	q := url.Values{
		"client_id":    {a.clientID},
		"redirect_uri": {redirectURL},
		"scope":        {"repo"},
		"state":        {state},
	}
	return a.authBase + "/login/oauth/authorize?" + q.Encode()
}

// ExchangeCode trades a short-lived authorization code for an access
// token. One network round-trip.
func (a *OAuthApp) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.authBase+"/login/oauth/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp)
	}
	var out struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("github: token exchange: %s: %s", out.Error, out.ErrorDescription)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return "", fmt.Errorf("github: token exchange returned no access token")
	}
	return out.AccessToken, nil
}

// Client performs authenticated API calls on behalf of one credential.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient(token string) *Client {
	return &Client{
		// Export walks are long-running; individual calls stay bounded.
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: defaultAPIBase,
		token:   token,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrAuthExpired
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AuthenticatedUser resolves the identity behind the credential.
func (c *Client) AuthenticatedUser(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &u); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(u.Login) == "" {
		return User{}, fmt.Errorf("github: user response missing login")
	}
	return u, nil
}

// CreateRepo creates a new repository under the authenticated user.
func (c *Client) CreateRepo(ctx context.Context, name, description string) (Repo, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"private":     false,
		"auto_init":   false,
	}
	var repo Repo
	err := c.do(ctx, http.MethodPost, "/user/repos", body, &repo)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
			return Repo{}, ErrNameConflict
		}
		return Repo{}, err
	}
	return repo, nil
}

// FileSHA looks up the blob SHA of path in the repository, reporting
// whether the file exists. A first export always misses; re-exports hit
// and use the SHA for a compare-and-swap update.
func (c *Client) FileSHA(ctx context.Context, owner, repo, path string) (string, bool, error) {
	var out struct {
		SHA string `json:"sha"`
	}
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, escapePath(path)), nil, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return out.SHA, true, nil
}

// PutFile creates or updates one file. sha must be the current blob SHA
// when updating, empty when creating.
func (c *Client) PutFile(ctx context.Context, owner, repo, path, message, content, sha string) error {
	body := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	if sha != "" {
		body["sha"] = sha
	}
	return c.do(ctx, http.MethodPut,
		fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, escapePath(path)), body, nil)
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
