package repository

import (
	"context"
	"errors"
	"testing"

	"slotbook/internal/slots"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/storage"
)

type stubStore struct {
	getFunc func(ctx context.Context, key string) ([]byte, error)
	setFunc func(ctx context.Context, key string, value []byte) error
}

func (s *stubStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.getFunc(ctx, key)
}

func (s *stubStore) Set(ctx context.Context, key string, value []byte) error {
	return s.setFunc(ctx, key, value)
}

func (s *stubStore) Delete(context.Context, string) error { return nil }
func (s *stubStore) Ping(context.Context) error           { return nil }
func (s *stubStore) Close() error                         { return nil }

func newRepo(store storage.Store) LedgerRepository {
	return NewLedgerRepository(store, slots.Default(), logger.Discard(), nil)
}

func TestLedgerRepository_LoadMissing(t *testing.T) {
	repo := newRepo(storage.NewMemoryStore())

	ledger, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(ledger) != 0 {
		t.Errorf("Load() = %v, want empty ledger", ledger)
	}
}

func TestLedgerRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := newRepo(store)

	want := model.Ledger{
		"2025-01-10": {1, 0, 0, 0, 0},
		"2025-02-01": {5, 5, 0, 2, 1},
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := newRepo(store).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load() returned %d dates, want %d", len(got), len(want))
	}
	for key, counts := range want {
		for i, c := range counts {
			if got[key][i] != c {
				t.Errorf("got[%s][%d] = %d, want %d", key, i, got[key][i], c)
			}
		}
	}
}

func TestLedgerRepository_LoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{not json"},
		{name: "wrong shape", raw: `{"2025-01-10": "three"}`},
		{name: "array root", raw: `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			_ = store.Set(context.Background(), LedgerKey, []byte(tt.raw))

			ledger, err := newRepo(store).Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v, want nil", err)
			}
			if len(ledger) != 0 {
				t.Errorf("Load() = %v, want empty ledger", ledger)
			}
		})
	}
}

func TestLedgerRepository_LoadNormalizes(t *testing.T) {
	store := storage.NewMemoryStore()
	raw := `{
		"2025-01-10": [1, 0, 0, 0, 0],
		"2025-1-11": [1, 1, 1, 1, 1],
		"garbage": [2],
		"2025-01-12": [9, -3, 2],
		"2025-01-13": [0, 0, 0, 0, 0],
		"2025-01-14": [1, 0, 0, 0, 0, 4, 4]
	}`
	_ = store.Set(context.Background(), LedgerKey, []byte(raw))

	ledger, err := newRepo(store).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := map[string][]int{
		"2025-01-10": {1, 0, 0, 0, 0},
		"2025-01-12": {5, 0, 2, 0, 0},
		"2025-01-14": {1, 0, 0, 0, 0},
	}
	if len(ledger) != len(want) {
		t.Fatalf("Load() = %v, want %v", ledger, want)
	}
	for key, counts := range want {
		got, ok := ledger[key]
		if !ok {
			t.Fatalf("missing date %s", key)
		}
		for i := range counts {
			if got[i] != counts[i] {
				t.Errorf("ledger[%s] = %v, want %v", key, got, counts)
				break
			}
		}
	}
}

func TestLedgerRepository_BackendErrors(t *testing.T) {
	boom := errors.New("backend down")
	repo := newRepo(&stubStore{
		getFunc: func(context.Context, string) ([]byte, error) { return nil, boom },
		setFunc: func(context.Context, string, []byte) error { return boom },
	})

	if _, err := repo.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want %v", err, boom)
	}
	if err := repo.Save(context.Background(), model.Ledger{}); !errors.Is(err, boom) {
		t.Errorf("Save() error = %v, want %v", err, boom)
	}
}

func TestLedgerRepository_SaveEmptyWritesObject(t *testing.T) {
	var written []byte
	repo := newRepo(&stubStore{
		setFunc: func(_ context.Context, key string, value []byte) error {
			if key != LedgerKey {
				t.Errorf("Set() key = %q, want %q", key, LedgerKey)
			}
			written = value
			return nil
		},
	})

	if err := repo.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if string(written) != "{}" {
		t.Errorf("Save(nil) wrote %q, want {}", written)
	}
}
