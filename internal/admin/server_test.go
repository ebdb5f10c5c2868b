package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codeblue-sim/internal/complication"
	"codeblue-sim/internal/lifecycle"
	"codeblue-sim/internal/patient"
	"codeblue-sim/internal/sim"
	"codeblue-sim/internal/streak"
)

type stubSession struct {
	snap      sim.Snapshot
	ackErr    error
	acked     []string
	dismissed []string
}

func (s *stubSession) Snapshot() sim.Snapshot { return s.snap }

func (s *stubSession) Acknowledge(_ context.Context, id string) error {
	if s.ackErr != nil {
		return s.ackErr
	}
	s.acked = append(s.acked, id)
	return nil
}

func (s *stubSession) Dismiss(_ context.Context, id string) error {
	if s.ackErr != nil {
		return s.ackErr
	}
	s.dismissed = append(s.dismissed, id)
	return nil
}

func activeSnapshot() sim.Snapshot {
	ev := complication.Event{ID: "e1", Key: "vfib", Title: "Ventricular fibrillation", Description: "Chaotic rhythm.", Severity: "critical", RequiresAction: true, TimeLimitSeconds: 30}
	return sim.Snapshot{
		SessionID:       "s1",
		Scenario:        "cardiac-arrest",
		Title:           "Cardiac Arrest",
		Phase:           "crisis",
		DurationSeconds: 600,
		Vitals:          patient.Vitals{patient.HeartRate: patient.Number(0)},
		Equipment:       []patient.Equipment{{ID: "defib-1", Type: patient.Defibrillator, Malfunctioning: true}},
		Active:          lifecycle.Status{State: lifecycle.Active, Event: &ev, Remaining: 12},
		Outcome:         "ongoing",
	}
}

func TestHandleIndex(t *testing.T) {
	srv := NewServer(&stubSession{snap: activeSnapshot()}, nil, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Cardiac Arrest", "Ventricular fibrillation", "12s remaining", "defib-1", "malfunction"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
	if strings.Contains(body, ">Dismiss<") {
		t.Fatalf("action events should not render a dismiss button")
	}
}

func TestHandleState(t *testing.T) {
	srv := NewServer(&stubSession{snap: activeSnapshot()}, nil, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got sim.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Active.State != lifecycle.Active || got.Active.Event == nil || got.Active.Event.ID != "e1" {
		t.Fatalf("unexpected active status: %+v", got.Active)
	}
}

func TestHandleAcknowledge(t *testing.T) {
	sess := &stubSession{snap: activeSnapshot()}
	h := NewServer(sess, nil, nil).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/acknowledge?id=e1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if len(sess.acked) != 1 || sess.acked[0] != "e1" {
		t.Fatalf("acknowledge not forwarded: %v", sess.acked)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dismiss?id=e2", nil))
	if w.Code != http.StatusOK || len(sess.dismissed) != 1 {
		t.Fatalf("dismiss not forwarded: %d %v", w.Code, sess.dismissed)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/acknowledge", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing id: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/acknowledge?id=e1", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET acknowledge: status = %d", w.Code)
	}
}

func TestResolveErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{lifecycle.ErrNoActiveEvent, http.StatusNotFound},
		{fmt.Errorf("%w: x", lifecycle.ErrUnknownEvent), http.StatusNotFound},
		{fmt.Errorf("dismiss e1: %w", lifecycle.ErrActionRequired), http.StatusConflict},
		{sim.ErrFinished, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		sess := &stubSession{snap: activeSnapshot(), ackErr: c.err}
		w := httptest.NewRecorder()
		NewServer(sess, nil, nil).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dismiss?id=e1", nil))
		if w.Code != c.want {
			t.Fatalf("%v: status = %d, want %d", c.err, w.Code, c.want)
		}
	}
}

func TestHandleStreak(t *testing.T) {
	ctx := context.Background()
	store := streak.NewMemoryStore()
	if err := store.Set(ctx, streak.RecordKey, []byte(`{"currentStreak":6,"bestStreak":9}`)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := NewServer(&stubSession{snap: activeSnapshot()}, streak.NewTracker(store, nil), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/streak", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got streakView
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Record.CurrentStreak != 6 || got.Record.BestStreak != 9 {
		t.Fatalf("record = %+v", got.Record)
	}
	if got.Tier == nil || got.Tier.Label != "On Fire" {
		t.Fatalf("tier = %+v", got.Tier)
	}
	if got.Next == nil || got.Next.Label != "Unstoppable" {
		t.Fatalf("next = %+v", got.Next)
	}
}

func TestHandleStreakDisabled(t *testing.T) {
	srv := NewServer(&stubSession{}, nil, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/streak", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}
