package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Batajoo/youtube-backend-clone/internal/common"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
)

var columns = []string{
	"id", "username", "email", "full_name", "avatar_url", "cover_image_url",
	"watch_history", "password_hash", "refresh_token_hash", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func identityRow(refresh any) *sqlmock.Rows {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		"01HX", "alice", "alice@example.com", "Alice A", "http://cdn/a.png", "",
		[]byte(`["v1","v2"]`), "$2a$10$hash", refresh, ts, ts,
	)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*full_name,\s*avatar_url,\s*cover_image_url,\s*watch_history,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8\)\s*RETURNING\s+id,`

	mock.ExpectQuery(q).
		WithArgs("01HX", "alice", "alice@example.com", "Alice A", "http://cdn/a.png", "", "[]", "$2a$10$hash").
		WillReturnRows(identityRow(nil))

	got, err := repo.Create(context.Background(), &models.Identity{
		ID:           "01HX",
		Username:     "  Alice ",
		Email:        "alice@example.com ",
		FullName:     "Alice A",
		AvatarURL:    "http://cdn/a.png",
		PasswordHash: "$2a$10$hash",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "01HX" || got.Username != "alice" || got.RefreshTokenHash != "" {
		t.Fatalf("unexpected identity: %+v", got)
	}
	if len(got.WatchHistory) != 2 || got.WatchHistory[1] != "v2" {
		t.Fatalf("unexpected watch history: %v", got.WatchHistory)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.Identity{ID: "1", Username: "alice"})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Identity{ID: "1", Username: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByHandleOrEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2\s+ORDER\s+BY\s+\(username\s*=\s*\$1\)\s+DESC\s+LIMIT\s+1$`

	mock.ExpectQuery(q).
		WithArgs("alice", "").
		WillReturnRows(identityRow("digest"))

	got, err := repo.FindByHandleOrEmail(context.Background(), "ALICE", "")
	if err != nil {
		t.Fatalf("FindByHandleOrEmail error: %v", err)
	}
	if got.RefreshTokenHash != "digest" || got.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestFindByHandleOrEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users`).
		WithArgs("ghost", "ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByHandleOrEmail(context.Background(), "ghost", "ghost@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("01HX").
		WillReturnRows(identityRow(nil))

	got, err := repo.FindByID(context.Background(), "01HX")
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestFindByIDForUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("01HX").
		WillReturnRows(identityRow(nil))

	if _, err := repo.FindByIDForUpdate(context.Background(), "01HX"); err != nil {
		t.Fatalf("FindByIDForUpdate error: %v", err)
	}
}

func TestSetRefreshToken(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token_hash\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1$`

	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("01HX", "digest").WillReturnResult(sqlmock.NewResult(0, 1))
		if err := repo.SetRefreshToken(context.Background(), "01HX", "digest"); err != nil {
			t.Fatalf("SetRefreshToken error: %v", err)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("nope", "digest").WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.SetRefreshToken(context.Background(), "nope", "digest")
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})
}

func TestUpdateRefreshToken(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token_hash\s*=\s*\$3,.*WHERE\s+id\s*=\s*\$1\s+AND\s+refresh_token_hash\s*=\s*\$2$`

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "swapped", affected: 1, want: true},
		{name: "stale token", affected: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(q).WithArgs("01HX", "old", "new").WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.UpdateRefreshToken(context.Background(), "01HX", "old", "new")
			if err != nil {
				t.Fatalf("UpdateRefreshToken error: %v", err)
			}
			if ok != tt.want {
				t.Fatalf("swapped = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestUpdateRefreshToken_EmptyExpectedNeverMatches(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ok, err := repo.UpdateRefreshToken(context.Background(), "01HX", "", "new")
	if err != nil || ok {
		t.Fatalf("want (false, nil), got (%v, %v)", ok, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestUpdateRefreshToken_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users`).WillReturnError(errors.New("conn reset"))

	_, err := repo.UpdateRefreshToken(context.Background(), "01HX", "old", "new")
	if err == nil || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestClearRefreshToken_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+refresh_token_hash\s*=\s*NULL,.*WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).WithArgs("01HX").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.ClearRefreshToken(context.Background(), "01HX"); err != nil {
		t.Fatalf("ClearRefreshToken error: %v", err)
	}
	if err := repo.ClearRefreshToken(context.Background(), "gone"); err != nil {
		t.Fatalf("ClearRefreshToken on missing record: %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,`).
		WithArgs("01HX", "$2a$10$new").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePasswordHash(context.Background(), "01HX", "$2a$10$new"); err != nil {
		t.Fatalf("UpdatePasswordHash error: %v", err)
	}
}

func TestUpdateAccountDetails(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+full_name\s*=\s*\$2,\s*email\s*=\s*\$3,.*RETURNING\s+id,`

	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("01HX", "Alice A", "alice@example.com").WillReturnRows(identityRow(nil))
		got, err := repo.UpdateAccountDetails(context.Background(), "01HX", "Alice A", " alice@example.com")
		if err != nil {
			t.Fatalf("UpdateAccountDetails error: %v", err)
		}
		if got.FullName != "Alice A" {
			t.Fatalf("unexpected identity: %+v", got)
		}
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(&pgconn.PgError{Code: "23505"})
		_, err := repo.UpdateAccountDetails(context.Background(), "01HX", "Alice", "bob@example.com")
		if !errors.Is(err, common.ErrAlreadyExists) {
			t.Fatalf("want common.ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)
		_, err := repo.UpdateAccountDetails(context.Background(), "nope", "Alice", "a@example.com")
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})
}

func TestUpdateAvatarAndCover(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+avatar_url\s*=\s*\$2,`).
		WithArgs("01HX", "http://cdn/b.png").
		WillReturnRows(identityRow(nil))
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+cover_image_url\s*=\s*\$2,`).
		WithArgs("01HX", "http://cdn/c.png").
		WillReturnRows(identityRow(nil))

	if _, err := repo.UpdateAvatar(context.Background(), "01HX", "http://cdn/b.png"); err != nil {
		t.Fatalf("UpdateAvatar error: %v", err)
	}
	if _, err := repo.UpdateCoverImage(context.Background(), "01HX", "http://cdn/c.png"); err != nil {
		t.Fatalf("UpdateCoverImage error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestScanIdentity_BadWatchHistory(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now()
	rows := sqlmock.NewRows(columns).AddRow("1", "a", "a@x", "", "", "", []byte(`{`), "h", nil, ts, ts)
	mock.ExpectQuery(`(?s)^SELECT`).WillReturnRows(rows)

	if _, err := repo.FindByID(context.Background(), "1"); err == nil {
		t.Fatal("expected decode error")
	}
}
