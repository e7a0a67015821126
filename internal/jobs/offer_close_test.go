package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"placement/portal/internal/config"
	"placement/portal/internal/logging"
)

type fakeCloser struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeCloser) CloseExpiredOffers(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 3, f.err
}

func TestCloseExpiredOffersPassesNow(t *testing.T) {
	closer := &fakeCloser{}
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	CloseExpiredOffers(context.Background(), closer, now, logging.Discard())
	if len(closer.calls) != 1 || !closer.calls[0].Equal(now) {
		t.Fatalf("expected one call at %s, got %v", now, closer.calls)
	}

	closer.err = errors.New("db down")
	CloseExpiredOffers(context.Background(), closer, now, logging.Discard())
	if len(closer.calls) != 2 {
		t.Fatalf("expected failing pass to still call the store")
	}
}

func TestStartOfferCloseJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disabled, err := StartOfferCloseJob(ctx, config.Config{OfferCloseJobEnabled: false}, &fakeCloser{}, logging.Discard())
	if err != nil || disabled != nil {
		t.Fatalf("expected disabled job, got %v %v", disabled, err)
	}

	if _, err := StartOfferCloseJob(ctx, config.Config{OfferCloseJobEnabled: true, OfferCloseSchedule: "not a schedule"}, &fakeCloser{}, logging.Discard()); err == nil {
		t.Fatalf("expected invalid schedule error")
	}

	scheduler, err := StartOfferCloseJob(ctx, config.Config{OfferCloseJobEnabled: true, OfferCloseSchedule: "@every 1h"}, &fakeCloser{}, logging.Discard())
	if err != nil {
		t.Fatalf("start error: %v", err)
	}
	if len(scheduler.Entries()) != 1 {
		t.Fatalf("expected one scheduled entry, got %d", len(scheduler.Entries()))
	}
}
