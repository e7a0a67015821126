package notify

import (
	"context"
	"errors"
	"testing"

	"placement/portal/internal/logging"
	"placement/portal/internal/memstore"
	"placement/portal/internal/model"
	"placement/portal/internal/repository"
)

func TestNotifyAppends(t *testing.T) {
	store := memstore.New()
	emitter := NewEmitter(logging.Discard())

	n, err := emitter.Notify(context.Background(), store, "user-1", "hello")
	if err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if n.UserID != "user-1" || n.Message != "hello" || n.ID == "" {
		t.Fatalf("unexpected notification: %+v", n)
	}

	items, err := store.ListNotifications(context.Background(), "user-1", repository.Page{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one notification, got %d", len(items))
	}
}

func TestNotifyWrapsWriteFailure(t *testing.T) {
	store := memstore.New()
	store.FailNotifications = true
	emitter := NewEmitter(logging.Discard())

	_, err := emitter.Notify(context.Background(), store, "user-1", "hello")
	if !errors.Is(err, memstore.ErrInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
}

func TestMessages(t *testing.T) {
	offer := model.JobOffer{Title: "Data Analyst"}
	if got := NewApplicationMessage(offer, model.User{Name: "Ada"}); got != "Ada applied for Data Analyst" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := NewApplicationMessage(offer, model.User{}); got != "A student applied for Data Analyst" {
		t.Fatalf("unexpected fallback message %q", got)
	}
	if got := StatusChangedMessage(offer, model.StatusSelected); got != "Your application for Data Analyst is now SELECTED" {
		t.Fatalf("unexpected status message %q", got)
	}
}
