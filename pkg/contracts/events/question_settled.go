package events

// Evento emitido pelo ledger-service após liquidar uma pergunta.
// O leaderboard-worker consome para atualizar o cache de classificação.
type QuestionSettled struct {
	QuestionID      string `json:"question_id"`
	WinningOptionID string `json:"winning_option_id"`
	BetsSettled     int    `json:"bets_settled"`
	TotalPaid       int64  `json:"total_paid"`
	TsUnixMs        int64  `json:"ts_unix_ms"`
}
