package service

import (
	"testing"
	"time"

	"github.com/rallyhq/rally-core/internal/apperr"
	"github.com/rallyhq/rally-core/internal/model"
)

func TestCheckRegistrationAllowed(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	base := model.Event{
		NbPlaces:       10,
		Date:           now.Add(48 * time.Hour),
		ClotureBillets: now.Add(24 * time.Hour),
	}

	tests := []struct {
		name    string
		mutate  func(*model.Event)
		count   int64
		wantErr bool
	}{
		{name: "open event with room", count: 9, wantErr: false},
		{name: "sold out", count: 10, wantErr: true},
		{name: "over capacity", count: 11, wantErr: true},
		{
			name:    "event already started",
			mutate:  func(e *model.Event) { e.Date = now },
			wantErr: true,
		},
		{
			name:    "event in the past",
			mutate:  func(e *model.Event) { e.Date = now.Add(-time.Hour) },
			wantErr: true,
		},
		{
			name:    "sales closed",
			mutate:  func(e *model.Event) { e.ClotureBillets = now.Add(-time.Minute) },
			wantErr: true,
		},
		{
			name:    "sales close exactly now",
			mutate:  func(e *model.Event) { e.ClotureBillets = now },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := base
			if tt.mutate != nil {
				tt.mutate(&event)
			}
			err := CheckRegistrationAllowed(&event, tt.count, now)
			if tt.wantErr && err == nil {
				t.Fatalf("expected denial, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if tt.wantErr && apperr.KindOf(err) != apperr.KindConflict {
				t.Fatalf("expected conflict kind, got %v", apperr.KindOf(err))
			}
		})
	}
}
