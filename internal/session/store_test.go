package session

import (
	"context"
	"testing"

	"github.com/vsbaha/ENASGame-new/internal/models"
)

type memSessions struct {
	items map[int64]models.UserSession
}

func (m *memSessions) Get(_ context.Context, userID int64) (*models.UserSession, error) {
	stored, ok := m.items[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &stored, nil
}

func (m *memSessions) Upsert(_ context.Context, session models.UserSession) error {
	m.items[session.UserID] = session
	return nil
}

func (m *memSessions) Delete(_ context.Context, userID int64) error {
	delete(m.items, userID)
	return nil
}

type dialog struct {
	Flow string            `json:"flow"`
	Step int               `json:"step"`
	Data map[string]string `json:"data"`
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(&memSessions{items: map[int64]models.UserSession{}})
	ctx := context.Background()
	flow := "create_tournament"

	in := dialog{Flow: flow, Step: 3, Data: map[string]string{"name": "Spring Cup"}}
	if err := store.Save(ctx, 42, &flow, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	var out dialog
	stored, err := store.Load(ctx, 42, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored session")
	}
	if stored.CurrentFlow == nil || *stored.CurrentFlow != flow {
		t.Fatalf("flow = %v, want %s", stored.CurrentFlow, flow)
	}
	if out.Step != 3 || out.Data["name"] != "Spring Cup" {
		t.Fatalf("state = %+v", out)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(&memSessions{items: map[int64]models.UserSession{}})

	var out dialog
	stored, err := store.Load(context.Background(), 42, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored != nil {
		t.Fatalf("stored = %+v, want nil", stored)
	}
	if out.Flow != "" {
		t.Fatalf("wizardOut mutated: %+v", out)
	}
}

func TestStoreOverwriteAndClear(t *testing.T) {
	store := NewStore(&memSessions{items: map[int64]models.UserSession{}})
	ctx := context.Background()
	first, second := "register_team", "edit_team"

	if err := store.Save(ctx, 42, &first, dialog{Flow: first}); err != nil {
		t.Fatalf("save first: %v", err)
	}
	// Starting a new flow replaces the single slot.
	if err := store.Save(ctx, 42, &second, dialog{Flow: second, Step: 1}); err != nil {
		t.Fatalf("save second: %v", err)
	}
	var out dialog
	stored, err := store.Load(ctx, 42, &out)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *stored.CurrentFlow != second || out.Flow != second {
		t.Fatalf("flow = %s / %s, want %s", *stored.CurrentFlow, out.Flow, second)
	}

	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stored, err = store.Load(ctx, 42, nil)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if stored != nil {
		t.Fatal("session survived clear")
	}
}
