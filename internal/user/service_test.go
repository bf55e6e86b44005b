package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/userman/internal/model"
	"github.com/hitoshi/userman/internal/repository"
)

// --- モック定義 ---

// mockUserRepo はUserRepositoryのモック実装。
type mockUserRepo struct {
	createFn   func(ctx context.Context, user *model.User) (*model.User, error)
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
	listFn     func(ctx context.Context, limit, offset int) ([]*model.User, error)
	updateFn   func(ctx context.Context, user *model.User) (*model.User, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	created := *user
	created.ID = 1
	return &created, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return []*model.User{}, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// mockHasher はPasswordHasherのモック実装。
// bcryptの計算コストを避けるため固定文字列を返す。
type mockHasher struct {
	hashFn func(raw string) (string, error)
}

func (m *mockHasher) Hash(raw string) (string, error) {
	if m.hashFn != nil {
		return m.hashFn(raw)
	}
	return "hashed:" + raw, nil
}

// mockUserMetrics はUserMetricsのモック実装。
type mockUserMetrics struct {
	created int
}

func (m *mockUserMetrics) RecordUserCreated() { m.created++ }

func strPtr(s string) *string { return &s }

// --- Create テスト ---

func TestService_Create_Success(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) (*model.User, error) {
			stored = u
			created := *u
			created.ID = 7
			return &created, nil
		},
	}
	metrics := &mockUserMetrics{}
	svc := NewService(repo, &mockHasher{}, metrics)

	created, err := svc.Create(context.Background(), "a@test.com", "supersecret", strPtr("Alpha Test"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID != 7 {
		t.Errorf("ID = %d, want 7", created.ID)
	}
	if stored.Email != "a@test.com" {
		t.Errorf("stored email = %q, want %q", stored.Email, "a@test.com")
	}
	// 平文パスワードは保存されず、ハッシュのみが渡される
	if stored.PasswordHash != "hashed:supersecret" {
		t.Errorf("stored hash = %q, want %q", stored.PasswordHash, "hashed:supersecret")
	}
	if metrics.created != 1 {
		t.Errorf("created metric = %d, want 1", metrics.created)
	}
}

// 登録時はメールアドレスが正規化されないことを検証（ログイン時の小文字化と非対称）
func TestService_Create_DoesNotNormalizeEmail(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) (*model.User, error) {
			stored = u
			created := *u
			created.ID = 1
			return &created, nil
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	if _, err := svc.Create(context.Background(), "Mixed@Test.com", "supersecret", nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if stored.Email != "Mixed@Test.com" {
		t.Errorf("stored email = %q, want %q (as-is)", stored.Email, "Mixed@Test.com")
	}
}

func TestService_Create_InvalidEmail_ValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockHasher{}, nil)

	for _, email := range []string{"", "not-an-email", "a@"} {
		_, err := svc.Create(context.Background(), email, "supersecret", nil)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
			t.Errorf("Create(email=%q): expected VALIDATION_ERROR, got %v", email, err)
		}
	}
}

func TestService_Create_ShortPassword_ValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockHasher{}, nil)

	_, err := svc.Create(context.Background(), "a@test.com", "short", nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestService_Create_DuplicateEmail_Conflict(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, u *model.User) (*model.User, error) {
			return nil, repository.ErrDuplicateEmail
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	_, err := svc.Create(context.Background(), "a@test.com", "supersecret", nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailConflict {
		t.Errorf("expected EMAIL_CONFLICT, got %v", err)
	}
}

// --- Get テスト ---

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockHasher{}, nil)

	_, err := svc.Get(context.Background(), 999)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// --- List テスト ---

// limitが[1,100]にクランプされ、offsetが0未満を許容しないことを検証
func TestService_List_ClampsPagination(t *testing.T) {
	tests := []struct {
		name                    string
		limit, offset           int
		wantLimit, wantOffset   int
	}{
		{"limit too large", 1000, 0, 100, 0},
		{"limit zero", 0, 0, 1, 0},
		{"limit negative", -5, 0, 1, 0},
		{"offset negative", 50, -10, 50, 0},
		{"within range", 25, 10, 25, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotOffset int
			repo := &mockUserRepo{
				listFn: func(ctx context.Context, limit, offset int) ([]*model.User, error) {
					gotLimit, gotOffset = limit, offset
					return []*model.User{}, nil
				},
			}
			svc := NewService(repo, &mockHasher{}, nil)

			if _, err := svc.List(context.Background(), tt.limit, tt.offset); err != nil {
				t.Fatalf("List failed: %v", err)
			}

			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("repo received (limit=%d, offset=%d), want (limit=%d, offset=%d)",
					gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

// --- Update テスト ---

func TestService_Update_PartialFields(t *testing.T) {
	existing := &model.User{
		ID:           1,
		Email:        "a@test.com",
		PasswordHash: "oldhash",
		FullName:     strPtr("Alpha Test"),
	}
	var updated *model.User
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, u *model.User) (*model.User, error) {
			updated = u
			return u, nil
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	_, err := svc.Update(context.Background(), 1, UpdateParams{
		FullName: strPtr("Alpha Updated"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// 指定フィールドのみ変更され、他は維持される
	if *updated.FullName != "Alpha Updated" {
		t.Errorf("FullName = %q, want %q", *updated.FullName, "Alpha Updated")
	}
	if updated.Email != "a@test.com" {
		t.Errorf("Email = %q, want unchanged %q", updated.Email, "a@test.com")
	}
	if updated.PasswordHash != "oldhash" {
		t.Errorf("PasswordHash = %q, want unchanged %q", updated.PasswordHash, "oldhash")
	}
}

func TestService_Update_PasswordIsRehashed(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: 1, Email: "a@test.com", PasswordHash: "oldhash"}, nil
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	updated, err := svc.Update(context.Background(), 1, UpdateParams{
		Password: strPtr("newpassword"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.PasswordHash != "hashed:newpassword" {
		t.Errorf("PasswordHash = %q, want %q", updated.PasswordHash, "hashed:newpassword")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockHasher{}, nil)

	_, err := svc.Update(context.Background(), 999, UpdateParams{FullName: strPtr("X")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestService_Update_DuplicateEmail_Conflict(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: 1, Email: "a@test.com"}, nil
		},
		updateFn: func(ctx context.Context, u *model.User) (*model.User, error) {
			return nil, repository.ErrDuplicateEmail
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	_, err := svc.Update(context.Background(), 1, UpdateParams{Email: strPtr("b@test.com")})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailConflict {
		t.Errorf("expected EMAIL_CONFLICT, got %v", err)
	}
}

// --- Delete テスト ---

func TestService_Delete_Success(t *testing.T) {
	deleteCalled := false
	repo := &mockUserRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			deleteCalled = true
			if id != 1 {
				t.Errorf("id = %d, want 1", id)
			}
			return nil
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	if err := svc.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !deleteCalled {
		t.Error("expected Delete to be called")
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			return repository.ErrNotFound
		},
	}
	svc := NewService(repo, &mockHasher{}, nil)

	err := svc.Delete(context.Background(), 999)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}
