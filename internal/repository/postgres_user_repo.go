package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/userman/internal/model"
)

// pqUniqueViolation はPostgreSQLのunique_violationエラーコード。
const pqUniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成し、DB採番のIDとタイムスタンプを反映して返す。
// メールアドレスのユニーク制約違反はErrDuplicateEmailとして返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	created := &model.User{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, full_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, is_active, created_at, updated_at`,
		user.Email, user.PasswordHash, user.FullName,
	).Scan(&created.ID, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)

	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return created, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx,
		`SELECT id, email, password_hash, full_name, is_active, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	)
}

// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
// 比較はストレージに保存された値との完全一致（大文字小文字を区別する）。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx,
		`SELECT id, email, password_hash, full_name, is_active, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	)
}

// List はID昇順でlimit件、offset件スキップしてユーザー一覧を返す。
func (r *PostgresUserRepo) List(ctx context.Context, limit, offset int) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, password_hash, full_name, is_active, created_at, updated_at
		 FROM users ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// Update はユーザーの全フィールドを上書き更新し、更新後の状態を返す。
// updated_atはDB側でnow()に更新する。
func (r *PostgresUserRepo) Update(ctx context.Context, user *model.User) (*model.User, error) {
	updated := &model.User{ID: user.ID}
	var fullName sql.NullString

	err := r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET email = $1, password_hash = $2, full_name = $3, is_active = $4, updated_at = now()
		 WHERE id = $5
		 RETURNING email, password_hash, full_name, is_active, created_at, updated_at`,
		user.Email, user.PasswordHash, user.FullName, user.IsActive, user.ID,
	).Scan(&updated.Email, &updated.PasswordHash, &fullName,
		&updated.IsActive, &updated.CreatedAt, &updated.UpdatedAt)
	if err == nil && fullName.Valid {
		updated.FullName = &fullName.String
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return updated, nil
}

// Delete は指定IDのユーザーを物理削除する。
func (r *PostgresUserRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// findOne は単一行クエリを実行してユーザーを返す。該当なしの場合はnilを返す。
func (r *PostgresUserRepo) findOne(ctx context.Context, query string, arg any) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	user, err := scanUser(row.Scan)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// scanUser はユーザー1行分のカラムをスキャンする。
func scanUser(scan func(dest ...any) error) (*model.User, error) {
	user := &model.User{}
	var fullName sql.NullString

	if err := scan(&user.ID, &user.Email, &user.PasswordHash, &fullName,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}

	if fullName.Valid {
		user.FullName = &fullName.String
	}
	return user, nil
}

// isUniqueViolation はエラーがPostgreSQLのユニーク制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
