package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vsbaha/ENASGame-new/internal/models"
)

func TestRegisterOrGreetCreatesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, created, err := f.access.RegisterOrGreet(ctx, 100, "Alice", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !created {
		t.Fatal("expected created=true on first contact")
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role = %s, want %s", user.Role, models.RoleUser)
	}

	again, created, err := f.access.RegisterOrGreet(ctx, 100, "Alice", nil)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if created {
		t.Fatal("expected created=false on repeat contact")
	}
	if again.ID != user.ID {
		t.Fatalf("id changed across contacts: %d vs %d", again.ID, user.ID)
	}
	if count, _ := f.users.Count(ctx); count != 1 {
		t.Fatalf("users count = %d, want 1", count)
	}
}

func TestRegisterOrGreetBootstrapsSuperAdmin(t *testing.T) {
	f := newFixture(500)

	user, _, err := f.access.RegisterOrGreet(context.Background(), 500, "Boss", nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleSuperAdmin {
		t.Fatalf("role = %s, want %s", user.Role, models.RoleSuperAdmin)
	}
}

func TestResolvePromotesAllowListed(t *testing.T) {
	f := newFixture(500)
	f.addUser(500, "boss", models.RoleUser)

	user, err := f.access.Resolve(context.Background(), 500)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Role != models.RoleSuperAdmin {
		t.Fatalf("role = %s, want %s", user.Role, models.RoleSuperAdmin)
	}
	stored, _ := f.users.GetByTelegramID(context.Background(), 500)
	if stored.Role != models.RoleSuperAdmin {
		t.Fatalf("persisted role = %s, want %s", stored.Role, models.RoleSuperAdmin)
	}
}

func TestRequire(t *testing.T) {
	f := newFixture()
	f.addUser(1, "plain", models.RoleUser)
	ctx := context.Background()

	if _, err := f.access.Require(ctx, 1, models.RoleAdmin); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, err := f.access.Require(ctx, 999, models.RoleUser); !errors.Is(err, models.ErrNotRegistered) {
		t.Fatalf("err = %v, want ErrNotRegistered", err)
	}
	if _, err := f.access.Require(ctx, 1, models.RoleUser); err != nil {
		t.Fatalf("require user tier: %v", err)
	}
}

func TestPromoteByUsername(t *testing.T) {
	f := newFixture(500)
	super := f.addUser(500, "boss", models.RoleSuperAdmin)
	f.addUser(2, "bob", models.RoleUser)
	ctx := context.Background()

	target, err := f.access.PromoteByUsername(ctx, 500, "@bob")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if target.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want %s", target.Role, models.RoleAdmin)
	}
	if target.AddedBy == nil || *target.AddedBy != super.ID {
		t.Fatalf("added_by = %v, want %d", target.AddedBy, super.ID)
	}

	if _, err := f.access.PromoteByUsername(ctx, 500, "ghost"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("unknown username: err = %v, want ErrNotFound", err)
	}
	if _, err := f.access.PromoteByUsername(ctx, 500, "boss"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("promote super admin: err = %v, want ErrForbidden", err)
	}
}

func TestPromoteRequiresSuperAdmin(t *testing.T) {
	f := newFixture()
	f.addUser(1, "admin", models.RoleAdmin)
	f.addUser(2, "bob", models.RoleUser)

	if _, err := f.access.PromoteByUsername(context.Background(), 1, "bob"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestToggleAdmin(t *testing.T) {
	f := newFixture(500)
	f.addUser(500, "boss", models.RoleSuperAdmin)
	admin := f.addUser(2, "bob", models.RoleAdmin)
	ctx := context.Background()

	demoted, err := f.access.ToggleAdmin(ctx, 500, admin.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if demoted.Role != models.RoleUser {
		t.Fatalf("role = %s, want %s", demoted.Role, models.RoleUser)
	}

	promoted, err := f.access.ToggleAdmin(ctx, 500, admin.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if promoted.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want %s", promoted.Role, models.RoleAdmin)
	}
}

func TestToggleAdminNeverTouchesSuperAdmin(t *testing.T) {
	f := newFixture(500)
	f.addUser(500, "boss", models.RoleSuperAdmin)
	other := f.addUser(501, "boss2", models.RoleSuperAdmin)

	if _, err := f.access.ToggleAdmin(context.Background(), 500, other.ID); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
