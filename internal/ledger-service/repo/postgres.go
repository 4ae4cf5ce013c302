package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// Postgres implementa o Ledger Store: persistência de usuários, eventos,
// perguntas, opções e apostas em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório do ledger
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrQuestionClosed      = errors.New("question closed for betting")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateBet        = errors.New("user already has a bet on this question")
	ErrAlreadySettled      = errors.New("question already settled")
	ErrInvalidOption       = errors.New("option does not belong to this question")
	ErrNotFound            = errors.New("not found")

	ErrRollNumberTaken = errors.New("roll number already registered")
	ErrEventNameTaken  = errors.New("event name already in use")
	ErrInvalidOdds     = errors.New("odds must be greater than 1.0")
	ErrTooFewOptions   = errors.New("question needs at least two options")
)

// isUniqueViolation detecta violação de constraint unique (23505) do Postgres
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// EnsureSchema cria as tabelas do ledger se não existirem.
// As deleções em cascata (evento → perguntas → opções → apostas) são política
// do schema, não do código: o banco propaga o DELETE.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id          UUID PRIMARY KEY,
		roll_number TEXT NOT NULL UNIQUE,
		name        TEXT NOT NULL,
		balance     BIGINT NOT NULL,
		is_admin    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS events (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS questions (
		id                UUID PRIMARY KEY,
		event_id          UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		text              TEXT NOT NULL,
		is_open           BOOLEAN NOT NULL DEFAULT TRUE,
		winning_option_id UUID,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS options (
		id          UUID PRIMARY KEY,
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		label       TEXT NOT NULL,
		odds        DOUBLE PRECISION NOT NULL CHECK (odds > 1.0)
	);
	CREATE TABLE IF NOT EXISTS bets (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id),
		question_id UUID NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		option_id   UUID NOT NULL REFERENCES options(id) ON DELETE CASCADE,
		amount      BIGINT NOT NULL CHECK (amount > 0),
		status      TEXT NOT NULL CHECK (status IN ('PENDING','WON','LOST')),
		placed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, question_id)
	);`
	_, err := p.db.ExecContext(ctx, ddl)
	return err
}

// CreateUser registra um usuário com o saldo inicial de pontos
func (p *Postgres) CreateUser(ctx context.Context, rollNumber, name string, isAdmin bool) (*User, error) {
	u := &User{
		ID:         uuid.NewString(),
		RollNumber: rollNumber,
		Name:       name,
		Balance:    StartingBalance,
		IsAdmin:    isAdmin,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, roll_number, name, balance, is_admin, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.RollNumber, u.Name, u.Balance, u.IsAdmin, u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrRollNumberTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser busca um usuário pelo id
func (p *Postgres) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, roll_number, name, balance, is_admin, created_at
		FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.RollNumber, &u.Name, &u.Balance, &u.IsAdmin, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateEvent cria um evento de torneio
func (p *Postgres) CreateEvent(ctx context.Context, name string) (*Event, error) {
	e := &Event{ID: uuid.NewString(), Name: name, IsActive: true, CreatedAt: time.Now().UTC()}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO events (id, name, is_active, created_at) VALUES ($1,$2,$3,$4)`,
		e.ID, e.Name, e.IsActive, e.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrEventNameTaken
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEvent busca um evento pelo id
func (p *Postgres) GetEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, is_active, created_at FROM events WHERE id=$1`, id,
	).Scan(&e.ID, &e.Name, &e.IsActive, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents lista eventos; onlyActive restringe aos com is_active=true
func (p *Postgres) ListEvents(ctx context.Context, onlyActive bool) ([]Event, error) {
	q := `SELECT id, name, is_active, created_at FROM events ORDER BY created_at`
	if onlyActive {
		q = `SELECT id, name, is_active, created_at FROM events WHERE is_active ORDER BY created_at`
	}
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ToggleEvent inverte o flag is_active de um evento
func (p *Postgres) ToggleEvent(ctx context.Context, id string) (*Event, error) {
	var e Event
	err := p.db.QueryRowContext(ctx, `
		UPDATE events SET is_active = NOT is_active
		WHERE id=$1
		RETURNING id, name, is_active, created_at`, id,
	).Scan(&e.ID, &e.Name, &e.IsActive, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEvent remove o evento; o schema propaga para perguntas, opções e apostas
func (p *Postgres) DeleteEvent(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateQuestion cria a pergunta e suas opções numa única transação.
// Exige pelo menos duas opções e odds estritamente maiores que 1.0 — uma odd
// ≤ 1.0 nunca produz retorno acima da stake e é rejeitada na criação.
func (p *Postgres) CreateQuestion(ctx context.Context, eventID, text string, opts []OptionInput) (*QuestionWithOptions, error) {
	if len(opts) < 2 {
		return nil, ErrTooFewOptions
	}
	for _, o := range opts {
		if o.Odds <= 1.0 {
			return nil, ErrInvalidOdds
		}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id=$1`, eventID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	q := Question{
		ID:        uuid.NewString(),
		EventID:   eventID,
		Text:      text,
		IsOpen:    true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO questions (id, event_id, text, is_open, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.EventID, q.Text, q.IsOpen, q.CreatedAt); err != nil {
		return nil, err
	}

	out := &QuestionWithOptions{Question: q}
	for _, in := range opts {
		opt := Option{ID: uuid.NewString(), QuestionID: q.ID, Label: in.Label, Odds: in.Odds}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO options (id, question_id, label, odds) VALUES ($1,$2,$3,$4)`,
			opt.ID, opt.QuestionID, opt.Label, opt.Odds); err != nil {
			return nil, err
		}
		out.Options = append(out.Options, opt)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListQuestions lista as perguntas de um evento com suas opções
func (p *Postgres) ListQuestions(ctx context.Context, eventID string) ([]QuestionWithOptions, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, event_id, text, is_open, winning_option_id, created_at
		FROM questions WHERE event_id=$1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QuestionWithOptions
	for rows.Next() {
		var q QuestionWithOptions
		var winner sql.NullString
		if err := rows.Scan(&q.ID, &q.EventID, &q.Text, &q.IsOpen, &winner, &q.CreatedAt); err != nil {
			return nil, err
		}
		if winner.Valid {
			w := winner.String
			q.WinningOptionID = &w
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		optRows, err := p.db.QueryContext(ctx, `
			SELECT id, question_id, label, odds FROM options WHERE question_id=$1 ORDER BY label`, out[i].ID)
		if err != nil {
			return nil, err
		}
		for optRows.Next() {
			var o Option
			if err := optRows.Scan(&o.ID, &o.QuestionID, &o.Label, &o.Odds); err != nil {
				optRows.Close()
				return nil, err
			}
			out[i].Options = append(out[i].Options, o)
		}
		if err := optRows.Close(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ToggleQuestion inverte o flag is_open de uma pergunta.
// Não toca em winning_option_id: fechar apostas e liquidar são estados independentes.
func (p *Postgres) ToggleQuestion(ctx context.Context, id string) (*Question, error) {
	var q Question
	var winner sql.NullString
	err := p.db.QueryRowContext(ctx, `
		UPDATE questions SET is_open = NOT is_open
		WHERE id=$1
		RETURNING id, event_id, text, is_open, winning_option_id, created_at`, id,
	).Scan(&q.ID, &q.EventID, &q.Text, &q.IsOpen, &winner, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		w := winner.String
		q.WinningOptionID = &w
	}
	return &q, nil
}

// PlaceBet valida e registra uma aposta numa única transação: debita a stake
// e insere a aposta PENDING, tudo ou nada. Ordem das pré-condições:
// pergunta aberta → valor positivo → saldo suficiente → sem aposta duplicada.
// A unique constraint (user_id, question_id) fecha a corrida entre duas
// chamadas concorrentes; a pré-checagem aqui só dá o erro mais cedo.
func (p *Postgres) PlaceBet(ctx context.Context, userID, questionID, optionID string, amount int64) (*Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var isOpen bool
	err = tx.QueryRowContext(ctx, `SELECT is_open FROM questions WHERE id=$1 FOR UPDATE`, questionID).Scan(&isOpen)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isOpen {
		return nil, ErrQuestionClosed
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var optQuestion string
	err = tx.QueryRowContext(ctx, `SELECT question_id FROM options WHERE id=$1`, optionID).Scan(&optQuestion)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if optQuestion != questionID {
		return nil, ErrInvalidOption
	}

	// Lock pessimista na linha do usuário para o check-then-act de saldo
	var balance int64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, ErrInsufficientBalance
	}

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT id FROM bets WHERE user_id=$1 AND question_id=$2`, userID, questionID).Scan(&existing)
	if err == nil {
		return nil, ErrDuplicateBet
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	b := &Bet{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: questionID,
		OptionID:   optionID,
		Amount:     amount,
		Status:     StatusPending,
		PlacedAt:   time.Now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, question_id, option_id, amount, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.UserID, b.QuestionID, b.OptionID, b.Amount, b.Status, b.PlacedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateBet
		}
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE users SET balance = balance - $1 WHERE id=$2`, amount, userID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// pendingBet é uma linha do loop de liquidação
type pendingBet struct {
	ID       string
	UserID   string
	OptionID string
	Amount   int64
	Odds     float64
}

// SettleQuestion declara a opção vencedora e liquida todas as apostas PENDING
// da pergunta numa única transação. A guarda de idempotência é o próprio
// winning_option_id: lido FOR UPDATE e gravado na mesma transação, de forma
// que duas liquidações concorrentes executem o loop de crédito exatamente uma vez.
// Liquidar uma pergunta ainda aberta é permitido (is_open não participa da guarda).
func (p *Postgres) SettleQuestion(ctx context.Context, questionID, winningOptionID string) (*SettlementReport, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var winner sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT winning_option_id FROM questions WHERE id=$1 FOR UPDATE`, questionID).Scan(&winner)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		return nil, ErrAlreadySettled
	}

	var optQuestion string
	err = tx.QueryRowContext(ctx, `SELECT question_id FROM options WHERE id=$1`, winningOptionID).Scan(&optQuestion)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidOption
	}
	if err != nil {
		return nil, err
	}
	if optQuestion != questionID {
		return nil, ErrInvalidOption
	}

	// Grava o vencedor antes do loop de crédito; a partir daqui a pergunta
	// está liquidada e qualquer reinvocação cai na guarda acima.
	if _, err = tx.ExecContext(ctx, `
		UPDATE questions SET winning_option_id=$1 WHERE id=$2`,
		winningOptionID, questionID); err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.option_id, b.amount, o.odds
		FROM bets b
		JOIN options o ON o.id = b.option_id
		WHERE b.question_id=$1 AND b.status=$2
		ORDER BY b.placed_at`, questionID, StatusPending)
	if err != nil {
		return nil, err
	}
	var pending []pendingBet
	for rows.Next() {
		var pb pendingBet
		if err := rows.Scan(&pb.ID, &pb.UserID, &pb.OptionID, &pb.Amount, &pb.Odds); err != nil {
			rows.Close()
			return nil, err
		}
		pending = append(pending, pb)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	report := &SettlementReport{QuestionID: questionID, WinningOptionID: winningOptionID}
	for _, pb := range pending {
		if pb.OptionID == winningOptionID {
			payout := Payout(pb.Amount, pb.Odds)
			if _, err = tx.ExecContext(ctx, `UPDATE bets SET status=$1 WHERE id=$2`, StatusWon, pb.ID); err != nil {
				return nil, err
			}
			if _, err = tx.ExecContext(ctx, `UPDATE users SET balance = balance + $1 WHERE id=$2`, payout, pb.UserID); err != nil {
				return nil, err
			}
			report.Winners = append(report.Winners, WinnerPayout{UserID: pb.UserID, Payout: payout})
		} else {
			// A stake já foi consumida na colocação; perder não mexe no saldo
			if _, err = tx.ExecContext(ctx, `UPDATE bets SET status=$1 WHERE id=$2`, StatusLost, pb.ID); err != nil {
				return nil, err
			}
		}
		report.BetsSettled++
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return report, nil
}

// ListUserBets lista as apostas de um usuário com o texto da pergunta e da opção
func (p *Postgres) ListUserBets(ctx context.Context, userID string) ([]UserBet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.question_id, b.option_id, b.amount, b.status, b.placed_at,
		       q.text, o.label, o.odds
		FROM bets b
		JOIN questions q ON q.id = b.question_id
		JOIN options o ON o.id = b.option_id
		WHERE b.user_id=$1
		ORDER BY b.placed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserBet
	for rows.Next() {
		var ub UserBet
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.QuestionID, &ub.OptionID, &ub.Amount, &ub.Status, &ub.PlacedAt,
			&ub.QuestionText, &ub.OptionLabel, &ub.Odds); err != nil {
			return nil, err
		}
		out = append(out, ub)
	}
	return out, rows.Err()
}

// ListBettors retorna os usuários elegíveis para a classificação:
// não-admins com pelo menos uma aposta. Saldo alto sem aposta não classifica.
func (p *Postgres) ListBettors(ctx context.Context) ([]rank.Entrant, error) {
	rows, err := p.db.QueryContext(ctx, `
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

// ListBetRows retorna o join completo de apostas para o relatório CSV
func (p *Postgres) ListBetRows(ctx context.Context) ([]BetExportRow, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT u.roll_number, u.name, u.balance,
		       q.text, o.label, b.amount, o.odds, b.placed_at, b.status
		FROM bets b
		JOIN users u ON u.id = b.user_id
		JOIN questions q ON q.id = b.question_id
		JOIN options o ON o.id = b.option_id
		ORDER BY b.placed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BetExportRow
	for rows.Next() {
		var r BetExportRow
		if err := rows.Scan(&r.RollNumber, &r.Name, &r.Balance,
			&r.Question, &r.Option, &r.Amount, &r.Odds, &r.PlacedAt, &r.Status); err != nil {
			return nil, err
		}
		if r.Status == StatusWon {
			r.Payout = Payout(r.Amount, r.Odds)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
