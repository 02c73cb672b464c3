// Package e2e drives the public HTTP surface end to end. The stack under
// test is wired the same way the server binary wires it, on in-memory
// stores, so scenarios run without external services.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	convhandler "idreclaim/internal/conversation/handler"
	convservice "idreclaim/internal/conversation/service"
	convstore "idreclaim/internal/conversation/store"
	"idreclaim/internal/match"
	notifhandler "idreclaim/internal/notification/handler"
	notifservice "idreclaim/internal/notification/service"
	notifstore "idreclaim/internal/notification/store"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/realtime"
	reporthandler "idreclaim/internal/report/handler"
	reportservice "idreclaim/internal/report/service"
	reportstore "idreclaim/internal/report/store"
	"idreclaim/internal/token"
	vaulthandler "idreclaim/internal/vault/handler"
	vaultservice "idreclaim/internal/vault/service"
	vaultstore "idreclaim/internal/vault/store"
)

const signingKey = "e2e-signing-key"

// TestContext holds the in-process router and the state scenarios share
// between steps: the signed-in caller, the last response, and saved values.
type TestContext struct {
	router chi.Router
	jwt    *token.JWTService
	bearer string
	resp   *httptest.ResponseRecorder
	saved  map[string]string
}

func NewTestContext() *TestContext {
	tc := &TestContext{}
	tc.Reset()
	return tc
}

// Reset rebuilds the stack on fresh stores so scenarios cannot leak state
// into each other.
func (tc *TestContext) Reset() {
	log := slog.New(slog.DiscardHandler)
	publisher := realtime.NoopPublisher{}

	tc.jwt = token.NewJWTService(signingKey)

	lost := reportstore.NewInMemoryLostStore()
	found := reportstore.NewInMemoryFoundStore()

	notifications := notifservice.New(notifstore.NewInMemoryStore(), publisher, log)
	engine := match.NewEngine(lost, found, notifications, publisher, log)
	vaults := vaultservice.New(vaultstore.NewInMemoryStore(), notifications, log)
	reports := reportservice.New(lost, found, engine, vaults, log)
	conversations := convservice.New(convstore.NewInMemoryStore(), publisher, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	reporthandler.New(reports, tc.jwt, log).Register(r)
	notifhandler.New(notifications, tc.jwt, log).Register(r)
	convhandler.New(conversations, tc.jwt, log).Register(r)
	vaulthandler.New(vaults, tc.jwt, log).Register(r)

	tc.router = r
	tc.bearer = ""
	tc.resp = nil
	tc.saved = map[string]string{}
}

// SignIn mints a real token for the named user and attaches it to every
// subsequent request.
func (tc *TestContext) SignIn(user string) error {
	signed, err := tc.jwt.Sign(user, time.Hour)
	if err != nil {
		return err
	}
	tc.bearer = "Bearer " + signed
	return nil
}

func (tc *TestContext) SignOut() {
	tc.bearer = ""
}

func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	tc.do(req)
	return nil
}

func (tc *TestContext) GET(path string) error {
	tc.do(httptest.NewRequest(http.MethodGet, path, nil))
	return nil
}

func (tc *TestContext) do(req *http.Request) {
	if tc.bearer != "" {
		req.Header.Set("Authorization", tc.bearer)
	}
	tc.resp = httptest.NewRecorder()
	tc.router.ServeHTTP(tc.resp, req)
}

func (tc *TestContext) StatusCode() int {
	if tc.resp == nil {
		return 0
	}
	return tc.resp.Code
}

// ResponseField walks a dotted path ("report.id") through the last JSON
// response body.
func (tc *TestContext) ResponseField(path string) (any, error) {
	if tc.resp == nil {
		return nil, fmt.Errorf("no response recorded")
	}
	var doc any
	if err := json.Unmarshal(tc.resp.Body.Bytes(), &doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	current := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: parent is not an object", part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", part)
		}
	}
	return current, nil
}

// ResponseList decodes the last response body as a JSON array.
func (tc *TestContext) ResponseList() ([]map[string]any, error) {
	if tc.resp == nil {
		return nil, fmt.Errorf("no response recorded")
	}
	var items []map[string]any
	if err := json.Unmarshal(tc.resp.Body.Bytes(), &items); err != nil {
		return nil, fmt.Errorf("decode response list: %w", err)
	}
	return items, nil
}

func (tc *TestContext) Save(key, value string) {
	tc.saved[key] = value
}

func (tc *TestContext) Saved(key string) (string, error) {
	value, ok := tc.saved[key]
	if !ok {
		return "", fmt.Errorf("nothing saved under %q", key)
	}
	return value, nil
}
