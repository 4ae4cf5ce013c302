package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

func newMockRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepo(db), mock
}

func TestListBettors_OnlyNonAdminsWithBets(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Mesmo predicado de elegibilidade do ledger-service: admins e usuários
	// sem aposta não entram no snapshot, independente do saldo
	mock.ExpectQuery(`is_admin = FALSE\s+AND EXISTS \(SELECT 1 FROM bets`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "roll_number", "name", "balance"}).
			AddRow("u-1", "21BCE001", "Alice", int64(310)).
			AddRow("u-2", "21BCE002", "Bob", int64(200)).
			AddRow("u-3", "21BCE003", "Carol", int64(0)))

	out, err := repo.ListBettors(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, rank.Entrant{UserID: "u-1", RollNumber: "21BCE001", Name: "Alice", Balance: 310}, out[0])
	assert.Equal(t, int64(0), out[2].Balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBettors_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`is_admin = FALSE\s+AND EXISTS \(SELECT 1 FROM bets`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "roll_number", "name", "balance"}))

	out, err := repo.ListBettors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}
