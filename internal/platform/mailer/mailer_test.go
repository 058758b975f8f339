package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

func TestSendGridPostsMail(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("auth header: got=%q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, FromEmail: "hello@webotixs.com"})
	err := m.Send(context.Background(), Message{
		To:      []Address{{Email: "acme@example.com", Name: "Acme"}},
		Subject: "Welcome",
		Text:    "hi",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Subject != "Welcome" || len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "acme@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.From.Email != "hello@webotixs.com" {
		t.Fatalf("from: got=%q", got.From.Email)
	}
}

func TestSendGridRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, FromEmail: "a@b.c", MaxRetries: 2})
	if err := m.Send(context.Background(), Message{To: []Address{{Email: "x@y.z"}}, Subject: "s", Text: "t"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls: want=2 got=%d", calls)
	}
}

func TestSendGridClientErrorIsFinal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	m := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL, FromEmail: "a@b.c", MaxRetries: 3})
	err := m.Send(context.Background(), Message{To: []Address{{Email: "x@y.z"}}, Subject: "s", Text: "t"})
	he, ok := err.(*HTTPError)
	if !ok || he.StatusCode != http.StatusBadRequest || he.Message != "bad from" {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestNoopWithoutAPIKey(t *testing.T) {
	m := New(logger.Nop(), Config{})
	if _, ok := m.(*noop); !ok {
		t.Fatalf("expected noop mailer, got %T", m)
	}
	if err := m.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("noop Send: %v", err)
	}
}
