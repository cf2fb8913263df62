package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/audit-console/internal/core/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *mocks.RecordingReporter) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reporter := &mocks.RecordingReporter{}
	client, err := NewClient(Config{BaseURL: srv.URL + "/api", TenantID: "tenant-9"},
		TokenSourceFunc(func() string { return token }), reporter, nil)
	require.NoError(t, err)
	return client, reporter
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative"} {
		_, err := NewClient(Config{BaseURL: base}, nil, nil, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, base)
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}, "tok-1")

	_, err := client.Do(context.Background(), Request{Path: "users", RequireAuth: true})
	require.NoError(t, err)

	assert.Equal(t, "/api/users", path)
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.Equal(t, "tenant-9", got.Get(DefaultTenantHeader))
	_, err = uuid.Parse(got.Get(RequestIDHeader))
	assert.NoError(t, err, "request id should be a uuid")
}

func TestClient_AuthHeaderOnlyWhenRequired(t *testing.T) {
	var auth []string
	var mu sync.Mutex
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
	ctx := context.Background()

	client, _ := newTestClient(t, handler, "tok-1")
	_, err := client.Do(ctx, Request{Path: "/public"})
	require.NoError(t, err)
	_, err = client.Do(ctx, Request{Path: "/private", RequireAuth: true, Token: "explicit"})
	require.NoError(t, err)

	anonymous, _ := newTestClient(t, handler, "")
	_, err = anonymous.Do(ctx, Request{Path: "/private", RequireAuth: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer explicit", ""}, auth)
}

func TestClient_ResponseModes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/json":
			writeTestJSON(w, http.StatusOK, map[string]any{"ok": true})
		case "/api/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/api/text":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello"))
		case "/api/file":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
			_, _ = w.Write([]byte("%PDF-1.7"))
		}
	}, "tok")
	ctx := context.Background()

	resp, err := client.Do(ctx, Request{Path: "/json"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.JSON))

	resp, err = client.Do(ctx, Request{Path: "/empty"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.JSON)

	resp, err = client.Do(ctx, Request{Path: "/text"})
	require.NoError(t, err)
	assert.Nil(t, resp.JSON, "non-JSON bodies decode to nothing")

	resp, err = client.Download(ctx, "/file")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), resp.Data)
	assert.Equal(t, "report.pdf", resp.Filename)
	assert.Equal(t, "application/pdf", resp.ContentType)

	_, err = client.Download(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_DoJSON(t *testing.T) {
	var received map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeTestJSON(w, http.StatusOK, map[string]string{"id": "c-1", "name": received["name"]})
	}, "tok")

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := client.DoJSON(context.Background(), Request{
		Method:      http.MethodPut,
		Path:        "/categories/c-1",
		Body:        map[string]string{"name": "Privacy"},
		RequireAuth: true,
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "c-1", out.ID)
	assert.Equal(t, "Privacy", out.Name)
}

func TestClient_ErrorParsing(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		raw     string
		message string
	}{
		{"message field", http.StatusBadRequest, map[string]any{"message": "Email already registered"}, "", "Email already registered"},
		{"error string", http.StatusConflict, map[string]any{"error": "duplicate"}, "", "duplicate"},
		{"nested error", http.StatusUnprocessableEntity, map[string]any{"error": map[string]any{"message": "bad otp"}}, "", "bad otp"},
		{"no message", http.StatusInternalServerError, map[string]any{"code": 7}, "", "Internal Server Error"},
		{"plain text", http.StatusBadGateway, nil, "upstream down", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body != nil {
					writeTestJSON(w, tt.status, tt.body)
					return
				}
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.raw))
			}, "tok")

			_, err := client.Do(context.Background(), Request{Path: "/x"})
			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			if tt.body != nil {
				assert.NotNil(t, apiErr.Data)
			}
		})
	}
}

func TestClient_UnauthorizedReported(t *testing.T) {
	client, reporter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
	}, "tok")

	_, err := client.Do(context.Background(), Request{Path: "/me", RequireAuth: true})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, []string{"jwt expired"}, reporter.Messages())
}

// A rejected credential exchange is not a session expiry
func TestClient_AnonymousUnauthorizedNotReported(t *testing.T) {
	client, reporter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}, "")

	_, err := client.Login(context.Background(), domain.LoginRequest{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, reporter.Messages())
}

// Three simultaneous 401 answers produce exactly one unauthorized event
func TestClient_ConcurrentUnauthorizedDeduplicated(t *testing.T) {
	var release = make(chan struct{})
	var arrived atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrived.Add(1)
		<-release
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "token revoked"})
	}))
	t.Cleanup(srv.Close)

	clock := mocks.NewFakeClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	signal := services.NewUnauthorizedSignal(services.UnauthorizedSignalConfig{Clock: clock})
	var events atomic.Int32
	signal.Subscribe(func(domain.UnauthorizedEvent) { events.Add(1) })

	client, err := NewClient(Config{BaseURL: srv.URL}, TokenSourceFunc(func() string { return "tok" }), signal, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), Request{Path: "/documents", RequireAuth: true})
		}(i)
	}

	require.Eventually(t, func() bool { return arrived.Load() == 3 }, 2*time.Second, 5*time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}
	assert.Equal(t, int32(1), events.Load())

	clock.Advance(domain.DefaultUnauthorizedCooldown)
	_, _ = client.Do(context.Background(), Request{Path: "/documents", RequireAuth: true})
	assert.Equal(t, int32(2), events.Load(), "a 401 after the cooldown raises again")
}

// A 401 returns to the caller while the logout it triggers is still pending
func TestClient_UnauthorizedDoesNotWaitForLogout(t *testing.T) {
	release := make(chan struct{})
	unblock := sync.OnceFunc(func() { close(release) })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/logout" {
			<-release
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeTestJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
	}))
	t.Cleanup(srv.Close)

	clock := mocks.NewFakeClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	signal := services.NewUnauthorizedSignal(services.UnauthorizedSignalConfig{Clock: clock})

	var mgr *services.SessionManager
	client, err := NewClient(Config{BaseURL: srv.URL}, TokenSourceFunc(func() string { return mgr.Token() }), signal, nil)
	require.NoError(t, err)

	notifier := mocks.NewRecordingNotifier()
	mgr, err = services.NewSessionManager(services.SessionManagerConfig{
		Repository: mocks.NewMockSessionRepository(),
		Clock:      clock,
		Signal:     signal,
		AuthAPI:    client,
		Notifier:   notifier,
	})
	require.NoError(t, err)
	t.Cleanup(mgr.Close)
	t.Cleanup(unblock)

	ctx := context.Background()
	require.NoError(t, mgr.Start(ctx))
	require.NoError(t, mgr.Login(ctx, domain.User{ID: "u-1", Email: "ada@example.com"}, "tok"))

	done := make(chan error, 1)
	go func() {
		_, err := client.Do(ctx, Request{Path: "/documents", RequireAuth: true})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	case <-time.After(2 * time.Second):
		t.Fatal("request blocked on the backend logout")
	}

	unblock()
	require.Eventually(t, func() bool { return len(notifier.Notifications()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, mgr.IsAuthenticated())
	assert.Equal(t, "jwt expired", notifier.Notifications()[0].Message)
}

func TestClient_List(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("limit"))
		assert.Equal(t, "acme", q.Get("search"))
		assert.Equal(t, "createdAt", q.Get("sortBy"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		assert.Equal(t, "pending", q.Get("status"))

		writeTestJSON(w, http.StatusOK, map[string]any{
			"data":       []map[string]any{{"id": 1}, {"id": 2}},
			"pagination": map[string]any{"total": 27, "page": 2, "limit": 25, "totalPages": 2},
		})
	}, "tok")

	page, err := client.List(context.Background(), "/access-requests", domain.ListQuery{
		Page:      2,
		Limit:     25,
		Search:    " acme ",
		SortBy:    "createdAt",
		SortOrder: domain.SortDesc,
		Filters:   map[string]string{"status": "pending"},
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 27, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.HasNext())
}

func TestClient_ListFlatPage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{"items": []any{}, "total": 0})
	}, "tok")

	page, err := client.List(context.Background(), "/users", domain.ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, domain.DefaultPage, page.Page)
	assert.Equal(t, domain.DefaultLimit, page.Limit)
}
