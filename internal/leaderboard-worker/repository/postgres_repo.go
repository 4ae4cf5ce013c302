package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// PostgresRepo é a leitura de classificação usada pelo worker: apenas a query
// de elegíveis, nada de escrita no ledger
type PostgresRepo struct{ db *sql.DB }

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// ListBettors retorna os não-admins com pelo menos uma aposta.
// Mesmo critério de elegibilidade do ledger-service.
func (r *PostgresRepo) ListBettors(ctx context.Context) ([]rank.Entrant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.roll_number, u.name, u.balance
		FROM users u
		WHERE u.is_admin = FALSE
		  AND EXISTS (SELECT 1 FROM bets b WHERE b.user_id = u.id)
		ORDER BY u.balance DESC, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rank.Entrant
	for rows.Next() {
		var e rank.Entrant
		if err := rows.Scan(&e.UserID, &e.RollNumber, &e.Name, &e.Balance); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
