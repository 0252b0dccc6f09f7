package user

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	// MinCost keeps the bcrypt work factor out of test runtime
	return NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, "admin")
}

func TestCreateAndVerify(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "pw1234567", false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Username != "alice" || created.IsAdmin {
		t.Errorf("Create() = %+v, want non-admin alice", created)
	}

	got, err := svc.Verify(ctx, "alice", "pw1234567")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Verify() username = %q, want alice", got.Username)
	}

	if _, err := svc.Verify(ctx, "alice", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify() with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Verify(ctx, "nobody", "pw1234567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify() with unknown user error = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "short password", username: "alice", password: "short", wantErr: ErrWeakPassword},
		{name: "seven char password", username: "alice", password: "1234567", wantErr: ErrWeakPassword},
		{name: "short username", username: "ab", password: "pw1234567", wantErr: ErrInvalidUsername},
		{name: "long username", username: string(make([]byte, 51)), password: "pw1234567", wantErr: ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tt.username, tt.password, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", "pw1234567", false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "alice", "pw7654321", false); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateUser", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureBootstrapAdmin(ctx, "adminpass"); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() error = %v", err)
	}
	if _, err := svc.Create(ctx, "alice", "pw1234567", false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, "admin", "admin"); !errors.Is(err, ErrProtectedAccount) {
		t.Errorf("Delete(admin) error = %v, want ErrProtectedAccount", err)
	}
	if err := svc.Delete(ctx, "alice", "alice"); !errors.Is(err, ErrSelfDeletion) {
		t.Errorf("Delete(self) error = %v, want ErrSelfDeletion", err)
	}
	if err := svc.Delete(ctx, "admin", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(unknown) error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, "admin", "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.GetActive(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActive() after delete error = %v, want ErrNotFound", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", "pw1234567", false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.ChangePassword(ctx, "alice", "wrongpassword", "newpassword123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ChangePassword() wrong current error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, "alice", "pw1234567", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("ChangePassword() short new error = %v, want ErrWeakPassword", err)
	}

	if err := svc.ChangePassword(ctx, "alice", "pw1234567", "newpassword123"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Verify(ctx, "alice", "newpassword123"); err != nil {
		t.Errorf("Verify() with new password error = %v", err)
	}
	if _, err := svc.Verify(ctx, "alice", "pw1234567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify() with old password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureBootstrapAdmin(ctx, "adminpass"); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() error = %v", err)
	}
	admin, err := svc.GetActive(ctx, "admin")
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if !admin.IsAdmin {
		t.Error("bootstrap admin should have is_admin set")
	}

	// second call must not duplicate or reset the account
	if err := svc.ChangePassword(ctx, "admin", "adminpass", "rotatedpass1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if err := svc.EnsureBootstrapAdmin(ctx, "adminpass"); err != nil {
		t.Fatalf("EnsureBootstrapAdmin() second call error = %v", err)
	}
	if _, err := svc.Verify(ctx, "admin", "rotatedpass1"); err != nil {
		t.Errorf("Verify() after re-ensure error = %v, want password preserved", err)
	}

	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("List() returned %d users, want 1", len(users))
	}
}

func TestDisabledUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice", "pw1234567", false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// flip the disabled flag directly through the collection
	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	users[0].Disabled = true
	if err := svc.saveAll(ctx, users); err != nil {
		t.Fatalf("saveAll() error = %v", err)
	}

	if _, err := svc.Verify(ctx, "alice", "pw1234567"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Verify() disabled error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.GetActive(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetActive() disabled error = %v, want ErrNotFound", err)
	}
}
