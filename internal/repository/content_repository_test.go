package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentUpsertInsertsFirstPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM home_pages WHERE is_active = TRUE")).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO home_pages").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	page, err := repo.Upsert(context.Background(), "<p>hello</p>")
	require.NoError(t, err)
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "<p>hello</p>", page.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentUpsertUpdatesActivePage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM home_pages")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE home_pages SET content = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("p1", "<p>v2</p>", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	page, err := repo.Upsert(context.Background(), "<p>v2</p>")
	require.NoError(t, err)
	assert.Equal(t, "p1", page.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentGetActiveMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewContentRepository(db)

	mock.ExpectQuery("FROM home_pages WHERE is_active = TRUE").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActive(context.Background())
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
