package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wish-wall/api"
	"wish-wall/auth"
	"wish-wall/contract"
	"wish-wall/domain/wall"
	"wish-wall/infrastructure/storage"
	"wish-wall/mocks"
	"wish-wall/projection"
	"wish-wall/runtime"
	"wish-wall/runtime/workers"
	"wish-wall/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var collection = wall.Collection("api-test")

// newServer serves the router over store. Feeds are supervised only when live is true.
func newServer(t *testing.T, store contract.DocumentStore, live bool) *httptest.Server {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	issuer := auth.NewIssuer("api_test_secret_long_enough", time.Hour)
	links, err := wall.NewGuestLinks("https://wall.example.com/", "https://qr.example.com/")
	require.NoError(t, err)

	moderation := services.NewModerationService(store, collection, registry, nil, log, 50*time.Millisecond)
	broadcast := services.NewBroadcastService(store, collection, registry, log, 50*time.Millisecond)
	submission := services.NewSubmissionService(store, collection, log)

	if live {
		ctx, cancel := context.WithCancel(context.Background())
		sup := workers.NewSupervisor(log, 20*time.Millisecond)
		sup.Add(moderation, broadcast)
		done := make(chan struct{})
		go func() {
			sup.Run(ctx)
			close(done)
		}()
		t.Cleanup(func() {
			cancel()
			<-done
		})
	}

	h := api.NewHandler(log, issuer, submission, moderation, broadcast, registry, links, 50*time.Millisecond)
	srv := httptest.NewServer(api.NewRouter(log, issuer, h))
	t.Cleanup(srv.Close)
	return srv
}

func newBadger(t *testing.T) contract.DocumentStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	store := storage.NewBadgerStore(db, logs.GetLoggerFromLevel(slog.LevelDebug))
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})
	return store
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, body string) (*http.Response, []byte) {
	c.t.Helper()
	r, err := http.NewRequest(method, c.base+path, strings.NewReader(body))
	require.NoError(c.t, err)
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(r)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, respBody
}

func connect(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	c := &client{t: t, base: srv.URL}
	resp, body := c.do(http.MethodPost, "/api/session", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session api.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session.Token)
	c.token = session.Token
	return c
}

func TestRouter_Requires_Session(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, newBadger(t), false)
	c := &client{t: t, base: srv.URL}

	resp, _ := c.do(http.MethodPost, "/api/wishes", `{"text":"Peace on Earth"}`)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/healthz", "")
	req.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/metrics", "")
	req.Equal(http.StatusOK, resp.StatusCode)
}

func TestRouter_Submit_Errors(t *testing.T) {
	req := require.New(t)
	c := connect(t, newServer(t, newBadger(t), false))

	// Blank wish
	resp, body := c.do(http.MethodPost, "/api/wishes", `{"text":"   "}`)
	req.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	var e api.ErrorResponse
	req.NoError(json.Unmarshal(body, &e))
	req.False(e.Retryable)

	// Broken JSON
	resp, _ = c.do(http.MethodPost, "/api/wishes", `{`)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	// Clear-all without confirmation
	resp, _ = c.do(http.MethodDelete, "/api/wishes", "")
	req.Equal(http.StatusPreconditionRequired, resp.StatusCode)

	// Unknown wish
	resp, _ = c.do(http.MethodPost, "/api/wishes/ghost/approve", "")
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Submit_Store_Down_Is_Retryable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockDocumentStore(ctrl)
	c := connect(t, newServer(t, store, false))

	// Given a store that refuses writes
	store.EXPECT().Create(gomock.Any(), collection, gomock.Any()).
		Return("", fmt.Errorf("connection refused")).Times(1)

	// When a guest submits
	resp, body := c.do(http.MethodPost, "/api/wishes", `{"text":"Peace on Earth"}`)

	// Then the guest is told to try again
	req.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	var e api.ErrorResponse
	req.NoError(json.Unmarshal(body, &e))
	req.True(e.Retryable)
}

func TestRouter_View_Modes(t *testing.T) {
	req := require.New(t)
	c := connect(t, newServer(t, newBadger(t), false))

	var view api.ViewResponse
	_, body := c.do(http.MethodGet, "/api/view?mode=WALL", "")
	req.NoError(json.Unmarshal(body, &view))
	req.Equal(wall.Display, view.Mode)
	req.NotNil(view.Links)
	req.Equal("https://wall.example.com/?mode=guest", view.Links.GuestURL)

	view = api.ViewResponse{}
	_, body = c.do(http.MethodGet, "/api/view?mode=hacker", "")
	req.NoError(json.Unmarshal(body, &view))
	req.Equal(wall.Landing, view.Mode)
	req.Nil(view.Links)
}

func TestRouter_Moderation_Flow(t *testing.T) {
	req := require.New(t)
	c := connect(t, newServer(t, newBadger(t), true))

	// Given a submitted wish
	resp, body := c.do(http.MethodPost, "/api/wishes", `{"text":"Peace on Earth"}`)
	req.Equal(http.StatusCreated, resp.StatusCode)
	var submitted api.SubmitResponse
	req.NoError(json.Unmarshal(body, &submitted))

	req.Eventually(func() bool {
		var q projection.QueueView
		_, body := c.do(http.MethodGet, "/api/queue", "")
		return json.Unmarshal(body, &q) == nil && len(q.Items) == 1 && q.Items[0].ID == submitted.ID
	}, 2*time.Second, 10*time.Millisecond)

	// When approved
	resp, _ = c.do(http.MethodPost, "/api/wishes/"+submitted.ID+"/approve", "")
	req.Equal(http.StatusNoContent, resp.StatusCode)

	// Then it reaches the wall
	req.Eventually(func() bool {
		var w projection.WallView
		_, body := c.do(http.MethodGet, "/api/wall", "")
		return json.Unmarshal(body, &w) == nil && len(w.Tiles) == 1 && w.Tiles[0].ID == submitted.ID
	}, 2*time.Second, 10*time.Millisecond)

	// When everything is cleared
	resp, body = c.do(http.MethodDelete, "/api/wishes?confirm=true", "")
	req.Equal(http.StatusOK, resp.StatusCode)
	var cleared api.ClearResponse
	req.NoError(json.Unmarshal(body, &cleared))
	req.Equal(1, cleared.Deleted)
}

func TestRouter_Wall_Stream(t *testing.T) {
	req := require.New(t)
	srv := newServer(t, newBadger(t), true)
	c := connect(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	r, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/api/wall/stream?"+auth.TokenQueryParam+"="+c.token, nil)
	req.NoError(err)
	resp, err := http.DefaultClient.Do(r)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("text/event-stream", resp.Header.Get("Content-Type"))

	// The current view arrives as soon as the viewer connects
	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	req.Equal("wall", event)
	var view projection.WallView
	req.NoError(json.Unmarshal([]byte(data), &view))
	req.Empty(view.Tiles)
	req.Equal(projection.WallPlaceholder, view.Placeholder)
}

// readEvent returns the next SSE event, skipping keep-alive comments.
func readEvent(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && data != "":
			return event, data
		}
	}
}
