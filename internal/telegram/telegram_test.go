package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getUpdates" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("offset"); got != "7" {
			t.Errorf("unexpected offset: %s", got)
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":[{"update_id":7,"message":{"message_id":1,"from":{"id":42,"username":"bob"},"chat":{"id":42},"date":1700000000,"text":"hello"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	updates, err := c.GetUpdates(7, 0)
	if err != nil {
		t.Fatalf("GetUpdates failed: %v", err)
	}
	if len(updates) != 1 || updates[0].Message == nil {
		t.Fatalf("unexpected updates: %#v", updates)
	}
	if updates[0].Message.Text != "hello" {
		t.Fatalf("unexpected text: %q", updates[0].Message.Text)
	}
	if updates[0].Message.From.ID != 42 {
		t.Fatalf("unexpected sender: %d", updates[0].Message.From.ID)
	}
}

func TestSendMessage(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sendMessage" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	if err := c.SendMessage(123, "reply text"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if !strings.Contains(gotBody, `"chat_id":123`) {
		t.Fatalf("expected chat_id in payload, got: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"reply text"`) {
		t.Fatalf("expected text in payload, got: %s", gotBody)
	}
}

func TestGetUpdatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	updates, err := c.GetUpdates(0, 0)
	if err == nil {
		t.Fatal("expected error for ok:false response")
	}
	if updates != nil {
		t.Fatalf("expected no updates, got %#v", updates)
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "Unauthorized") {
		t.Fatalf("expected error code and description, got: %v", err)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 2*time.Second)
	err := c.SendMessage(123, "hello")
	if err == nil {
		t.Fatal("expected error for ok:false response")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API description in error, got: %v", err)
	}
}

type fakeHandler struct {
	routed   []string
	searched []string
	resets   []string
}

func (f *fakeHandler) Route(_ context.Context, userID, raw string) string {
	f.routed = append(f.routed, raw)
	return "routed:" + raw
}

func (f *fakeHandler) Lookup(raw string) string {
	f.searched = append(f.searched, raw)
	return "found:" + raw
}

func (f *fakeHandler) Reset(_ context.Context, userID string) error {
	f.resets = append(f.resets, userID)
	return nil
}

func TestDispatch(t *testing.T) {
	h := &fakeHandler{}
	b := NewBot(nil, h, 30, zerolog.Nop())
	ctx := context.Background()

	if got := b.dispatch(ctx, "42", "/start"); got != greetingReply {
		t.Fatalf("unexpected /start reply: %q", got)
	}
	if got := b.dispatch(ctx, "42", "/reset"); got != resetReply {
		t.Fatalf("unexpected /reset reply: %q", got)
	}
	if len(h.resets) != 1 || h.resets[0] != "42" {
		t.Fatalf("expected reset for user 42, got %#v", h.resets)
	}
	if got := b.dispatch(ctx, "42", "/search acme"); got != "found:acme" {
		t.Fatalf("unexpected /search reply: %q", got)
	}
	if got := b.dispatch(ctx, "42", "/search"); got != searchUsage {
		t.Fatalf("expected search usage hint, got: %q", got)
	}
	if got := b.dispatch(ctx, "42", "/search@storebot acme"); got != "found:acme" {
		t.Fatalf("expected bot-name suffix to be stripped, got: %q", got)
	}
	if got := b.dispatch(ctx, "42", "plain message"); got != "routed:plain message" {
		t.Fatalf("unexpected routed reply: %q", got)
	}
}
