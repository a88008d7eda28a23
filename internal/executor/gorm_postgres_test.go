package executor

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"github.com/nlstn/go-eql/internal/query"
)

func newPostgresMock(t *testing.T) (*GormExecutor[person], sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}), nil)
	require.NoError(t, err)
	return NewGormExecutor[person](db), mock
}

func personRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "age", "nickname", "created"})
}

func TestGormExecutorPostgresFindAll(t *testing.T) {
	exec, mock := newPostgresMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "people" WHERE ("age" > $1) AND (lower("name") LIKE lower($2) ESCAPE '\') ORDER BY "name" DESC`)).
		WithArgs(30, "c%").
		WillReturnRows(personRows().AddRow(3, "carol", 35, "caz", time.Time{}))

	found, err := exec.FindAll(context.Background(), translate(t, "age > 30 and name ilike 'c%' order by name desc"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Name)
	require.NotNil(t, found[0].Nickname)
	assert.Equal(t, "caz", *found[0].Nickname)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormExecutorPostgresFindPage(t *testing.T) {
	exec, mock := newPostgresMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "people" WHERE ("id" IN ($1, $2, $3))`)).
		WithArgs(1, 2, 3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "people" WHERE ("id" IN ($1, $2, $3)) ORDER BY "id" LIMIT $4 OFFSET $5`)).
		WithArgs(1, 2, 3, 2, 1).
		WillReturnRows(personRows().AddRow(2, "bob", 25, nil, time.Time{}).AddRow(3, "carol", 35, nil, time.Time{}))

	page, err := exec.FindPage(context.Background(), translate(t, "id in (1, 2, 3)"), PageRequest{
		Offset: 1,
		Limit:  2,
		Sort:   query.By("id", query.ASC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, []int64{2, 3}, ids(page.Items))
	assert.False(t, page.HasNext())
	assert.NoError(t, mock.ExpectationsWereMet())
}
