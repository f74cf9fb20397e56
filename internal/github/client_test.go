package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(srv *httptest.Server, token string) *Client {
	c := NewClient(token)
	c.baseURL = srv.URL
	return c
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/oauth/access_token" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("code") != "abc" || r.PostForm.Get("client_id") != "cid" {
			t.Errorf("form = %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "gho_tok"})
	}))
	defer srv.Close()

	app := NewOAuthApp("cid", "secret")
	app.authBase = srv.URL
	tok, err := app.ExchangeCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if tok != "gho_tok" {
		t.Fatalf("token = %q", tok)
	}
}

func TestExchangeCodeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "bad_verification_code",
			"error_description": "The code passed is incorrect or expired.",
		})
	}))
	defer srv.Close()

	app := NewOAuthApp("cid", "secret")
	app.authBase = srv.URL
	if _, err := app.ExchangeCode(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for provider-reported failure")
	}
}

func TestAuthorizeURLEmbedsState(t *testing.T) {
	app := NewOAuthApp("cid", "secret")
	u := app.AuthorizeURL("state123", "http://localhost:8081/api/github/callback")
	if !strings.Contains(u, "state=state123") || !strings.Contains(u, "client_id=cid") {
		t.Fatalf("authorize URL missing params: %s", u)
	}
}

func TestAuthenticatedUser401(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv, "stale").AuthenticatedUser(context.Background())
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("error = %v, want ErrAuthExpired", err)
	}
}

func TestCreateRepoConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"name already exists on this account"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv, "tok").CreateRepo(context.Background(), "taken", "")
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("error = %v, want ErrNameConflict", err)
	}
}

func TestFileSHAMissingFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sha, exists, err := testClient(srv, "tok").FileSHA(context.Background(), "me", "repo", "src/main.jsx")
	if err != nil {
		t.Fatalf("FileSHA() error = %v", err)
	}
	if exists || sha != "" {
		t.Fatalf("FileSHA() = %q, %v; want miss", sha, exists)
	}
}

func TestPutFileEncodesContent(t *testing.T) {
	var got struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := testClient(srv, "tok").PutFile(context.Background(), "me", "repo", "src/App.jsx", "add App.jsx", "hello", "")
	if err != nil {
		t.Fatalf("PutFile() error = %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.Content)
	if err != nil {
		t.Fatalf("content not base64: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("content = %q", decoded)
	}
	if got.SHA != "" {
		t.Fatalf("sha sent on create: %q", got.SHA)
	}
}
