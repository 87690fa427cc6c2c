package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/queuejw/messenger/internal/core/domain"
	"github.com/queuejw/messenger/internal/core/service"
	"github.com/queuejw/messenger/internal/infrastructure/credential"
	"github.com/queuejw/messenger/internal/infrastructure/db/entity"
	"github.com/queuejw/messenger/internal/infrastructure/db/memory"
	"github.com/queuejw/messenger/internal/infrastructure/http/handlers"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	backend := memory.New()
	cipher, err := credential.New(credential.ModeXChaCha, "router-test-key")
	if err != nil {
		t.Fatalf("credential.New returned error: %v", err)
	}

	users := entity.NewCollection[domain.User](backend, domain.KindUsers)
	logins := entity.NewCollection[domain.LoginClaim](backend, domain.KindLogins)
	messages := entity.NewCollection[domain.Message](backend, domain.KindMessages, entity.WithIDFunc(entity.LongID))

	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Accounts:   service.NewAccountService(users, logins, cipher, zerolog.Nop()),
		Messages:   service.NewMessageService(messages, zerolog.Nop()),
		Ready:      map[string]handlers.Pinger{"storage": backend},
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RegisterLoginSendReceive(t *testing.T) {
	e := newTestRouter(t)

	rec := do(e, http.MethodPost, "/api/register", `{"login":"alice","password":"secret","confirmPassword":"secret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var reg struct{ ID string }
	_ = json.Unmarshal(rec.Body.Bytes(), &reg)

	rec = do(e, http.MethodPost, "/api/register", `{"login":"alice","password":"other","confirmPassword":"other"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/register", `{"login":"bo","password":"secret","confirmPassword":"secret"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short login: expected 400, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/login", `{"login":"alice","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var login struct {
		UserID string `json:"userId"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &login)
	if login.UserID != reg.ID {
		t.Fatalf("login returned %q, registered %q", login.UserID, reg.ID)
	}

	rec = do(e, http.MethodPost, "/api/login", `{"login":"alice","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/users/"+reg.ID, "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("get user: unexpected response %d: %s", rec.Code, rec.Body.String())
	}
	if rec = do(e, http.MethodGet, "/api/users/nobody00", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get missing user: expected 404, got %d", rec.Code)
	}

	rec = do(e, http.MethodPost, "/api/messages/send", `{"senderId":"x","recipientId":"`+reg.ID+`","content":"hello"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("send: expected 201, got %d", rec.Code)
	}

	rec = do(e, http.MethodGet, "/api/messages/receive?userId="+reg.ID, "")
	var msgs []domain.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("receive: unexpected response %d: %s", rec.Code, rec.Body.String())
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("receive: unexpected messages %+v", msgs)
	}

	if rec = do(e, http.MethodGet, "/api/messages/receive?userId=other", ""); rec.Body.String() != "[]\n" {
		t.Fatalf("receive for other user: expected [], got %q", rec.Body.String())
	}
}

func TestRouter_ProbesAndMetrics(t *testing.T) {
	e := newTestRouter(t)

	if rec := do(e, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}

	do(e, http.MethodGet, "/health", "")
	rec := do(e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "messenger_requests_total") {
		t.Fatalf("expected request metrics in exposition")
	}
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	e := newTestRouter(t)

	rec := do(e, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("expected error envelope, got %q", rec.Body.String())
	}
}

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"login taken", domain.ErrLoginTaken, http.StatusConflict, "login: login already taken"},
		{"validation", &domain.ValidationError{Field: "password", Reason: "too short"}, http.StatusBadRequest, "password: too short"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid login or password"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not found"},
		{"storage", domain.NewStorageError("scan", "users", "", errors.New("eio")), http.StatusInternalServerError, "internal server error"},
		{"cipher", domain.ErrCipher, http.StatusInternalServerError, "internal server error"},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusAccepted, "done")

	NewHTTPErrorHandler(zerolog.Nop())(context.Canceled, c)

	if rec.Code != http.StatusAccepted || rec.Body.String() != "done" {
		t.Fatalf("expected committed response to be left alone, got %d %q", rec.Code, rec.Body.String())
	}
}
