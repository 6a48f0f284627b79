package service

import (
	"context"
	"errors"
	"testing"

	"slotbook/internal/profiles/repository"
	"slotbook/internal/profiles/validator"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/storage"
)

type mockProfileRepository struct {
	loadFunc   func(ctx context.Context) (*model.ContactProfile, error)
	saveFunc   func(ctx context.Context, p *model.ContactProfile) error
	deleteFunc func(ctx context.Context) error
}

func (m *mockProfileRepository) Load(ctx context.Context) (*model.ContactProfile, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return nil, nil
}

func (m *mockProfileRepository) Save(ctx context.Context, p *model.ContactProfile) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	return nil
}

func (m *mockProfileRepository) Delete(ctx context.Context) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx)
	}
	return nil
}

func newProfileService(t *testing.T, repo repository.ProfileRepository) ProfileService {
	t.Helper()
	log := logger.Discard()
	svc, err := NewProfileService(context.Background(), repo, validator.NewProfileValidator(log), log, nil)
	if err != nil {
		t.Fatalf("NewProfileService() error = %v", err)
	}
	return svc
}

func TestProfileService_GetAbsent(t *testing.T) {
	svc := newProfileService(t, &mockProfileRepository{})

	if p, ok := svc.Get(context.Background()); ok || p != nil {
		t.Errorf("Get() = %+v, %v; want nil, false", p, ok)
	}
}

func TestProfileService_SaveReplacesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := repository.NewProfileRepository(store, logger.Discard(), nil)
	svc := newProfileService(t, repo)

	if _, err := svc.Save(ctx, model.ContactProfile{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	saved, err := svc.Save(ctx, model.ContactProfile{Name: "  Grace   Hopper ", Email: " Grace@Navy.MIL ", Phone: "5559876543"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	want := model.ContactProfile{Name: "Grace Hopper", Email: "grace@navy.mil", Phone: "5559876543"}
	if *saved != want {
		t.Errorf("Save() = %+v, want %+v", *saved, want)
	}

	reloaded := newProfileService(t, repository.NewProfileRepository(store, logger.Discard(), nil))
	got, ok := reloaded.Get(ctx)
	if !ok || *got != want {
		t.Errorf("reloaded Get() = %+v, %v; want %+v", got, ok, want)
	}
}

func TestProfileService_SaveInvalid(t *testing.T) {
	saves := 0
	svc := newProfileService(t, &mockProfileRepository{
		saveFunc: func(context.Context, *model.ContactProfile) error {
			saves++
			return nil
		},
	})

	_, err := svc.Save(context.Background(), model.ContactProfile{Name: "Jo", Email: "bad", Phone: "123"})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Save() error = %v, want ValidationErrors", err)
	}
	if saves != 0 {
		t.Errorf("invalid profile was persisted %d times", saves)
	}
	if _, ok := svc.Get(context.Background()); ok {
		t.Error("invalid profile became current")
	}
}

func TestProfileService_SaveFailureKeepsPrevious(t *testing.T) {
	boom := errors.New("disk full")
	previous := &model.ContactProfile{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"}
	repo := &mockProfileRepository{
		loadFunc: func(context.Context) (*model.ContactProfile, error) { return previous, nil },
		saveFunc: func(context.Context, *model.ContactProfile) error { return boom },
	}
	svc := newProfileService(t, repo)

	if _, err := svc.Save(context.Background(), model.ContactProfile{Name: "Grace", Email: "g@example.com", Phone: "5559876543"}); !errors.Is(err, boom) {
		t.Fatalf("Save() error = %v, want %v", err, boom)
	}
	got, ok := svc.Get(context.Background())
	if !ok || *got != *previous {
		t.Errorf("Get() = %+v, want previous %+v", got, previous)
	}
}

func TestProfileService_Prepare(t *testing.T) {
	svc := newProfileService(t, &mockProfileRepository{})

	p, err := svc.Prepare(model.ContactProfile{Name: " Ada ", Email: "ADA@example.com", Phone: " 5551234567 "})
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if p.Name != "Ada" || p.Email != "ada@example.com" || p.Phone != "5551234567" {
		t.Errorf("Prepare() = %+v", p)
	}
	if _, ok := svc.Get(context.Background()); ok {
		t.Error("Prepare() must not persist")
	}

	if _, err := svc.Prepare(model.ContactProfile{Name: " J "}); err == nil {
		t.Error("Prepare() with whitespace-padded single character name should fail")
	}
}

func TestProfileService_GetReturnsCopy(t *testing.T) {
	svc := newProfileService(t, &mockProfileRepository{
		loadFunc: func(context.Context) (*model.ContactProfile, error) {
			return &model.ContactProfile{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"}, nil
		},
	})

	p, _ := svc.Get(context.Background())
	p.Name = "Mallory"
	again, _ := svc.Get(context.Background())
	if again.Name != "Ada" {
		t.Errorf("Get() exposed internal state, name = %q", again.Name)
	}
}

func TestProfileService_Clear(t *testing.T) {
	boom := errors.New("delete failed")
	repo := &mockProfileRepository{
		loadFunc: func(context.Context) (*model.ContactProfile, error) {
			return &model.ContactProfile{Name: "Ada", Email: "ada@example.com", Phone: "5551234567"}, nil
		},
		deleteFunc: func(context.Context) error { return boom },
	}
	svc := newProfileService(t, repo)

	if err := svc.Clear(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Clear() error = %v, want %v", err, boom)
	}
	if _, ok := svc.Get(context.Background()); !ok {
		t.Error("failed Clear() dropped the profile")
	}

	repo.deleteFunc = nil
	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := svc.Get(context.Background()); ok {
		t.Error("profile still present after Clear()")
	}
}

func TestProfileService_IgnoresUnusableStoredProfile(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "null", stored: `null`},
		{name: "empty object", stored: `{}`},
		{name: "invalid fields", stored: `{"name":"","email":"x","phone":"1"}`},
		{name: "short name", stored: `{"name":"A","email":"a@example.com","phone":"5551234567"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryStore()
			_ = store.Set(ctx, repository.ProfileKey, []byte(tt.stored))

			svc := newProfileService(t, repository.NewProfileRepository(store, logger.Discard(), nil))
			if p, ok := svc.Get(ctx); ok || p != nil {
				t.Errorf("Get() = %+v, %v; want nil, false", p, ok)
			}
		})
	}
}

func TestProfileService_LoadsSanitizedStoredProfile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Set(ctx, repository.ProfileKey, []byte(`{"name":" Ada  Lovelace ","email":"ADA@example.com","phone":"5551234567"}`))

	svc := newProfileService(t, repository.NewProfileRepository(store, logger.Discard(), nil))
	got, ok := svc.Get(ctx)
	if !ok {
		t.Fatal("Get() reported no profile")
	}
	want := model.ContactProfile{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "5551234567"}
	if *got != want {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}
