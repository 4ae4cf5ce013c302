package repo

import "time"

// Estados do ciclo de vida de uma aposta. O status é escrito uma única vez
// pela liquidação; fora isso a aposta é imutável após a criação.
const (
	StatusPending = "PENDING"
	StatusWon     = "WON"
	StatusLost    = "LOST"
)

// StartingBalance é o saldo de pontos de um usuário recém-registrado.
const StartingBalance int64 = 200

type User struct {
	ID         string
	RollNumber string
	Name       string
	Balance    int64
	IsAdmin    bool
	CreatedAt  time.Time
}

type Event struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Question mantém dois flags independentes: IsOpen controla se aceita apostas;
// WinningOptionID marca a liquidação. Fechar não liquida e liquidar não exige fechar.
type Question struct {
	ID              string
	EventID         string
	Text            string
	IsOpen          bool
	WinningOptionID *string
	CreatedAt       time.Time
}

type Option struct {
	ID         string
	QuestionID string
	Label      string
	Odds       float64
}

// OptionInput é uma opção ainda sem identificador, na criação de uma pergunta.
type OptionInput struct {
	Label string
	Odds  float64
}

type Bet struct {
	ID         string
	UserID     string
	QuestionID string
	OptionID   string
	Amount     int64
	Status     string
	PlacedAt   time.Time
}

// QuestionWithOptions agrega a pergunta e suas opções para listagem.
type QuestionWithOptions struct {
	Question
	Options []Option
}

// UserBet é uma aposta com o contexto textual da pergunta/opção, para exibição.
type UserBet struct {
	Bet
	QuestionText string
	OptionLabel  string
	Odds         float64
}

// WinnerPayout registra o crédito feito a um vencedor numa liquidação.
type WinnerPayout struct {
	UserID string
	Payout int64
}

// SettlementReport resume o efeito de uma liquidação.
type SettlementReport struct {
	QuestionID      string
	WinningOptionID string
	BetsSettled     int
	Winners         []WinnerPayout
}

// BetExportRow é uma linha do relatório CSV de apostas.
type BetExportRow struct {
	RollNumber string
	Name       string
	Balance    int64
	Question   string
	Option     string
	Amount     int64
	Odds       float64
	PlacedAt   time.Time
	Status     string
	Payout     int64
}

// Payout calcula o retorno total de uma aposta vencedora: floor(amount × odds).
// O valor já inclui a stake (odds é o multiplicador do retorno, não do lucro).
// Truncamento intencional: pontos são inteiros e não se arredonda pra cima.
func Payout(amount int64, odds float64) int64 {
	return int64(float64(amount) * odds)
}
