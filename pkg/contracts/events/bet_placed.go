package events

type BetPlaced struct {
	BetID      string `json:"bet_id"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	OptionID   string `json:"option_id"`
	Amount     int64  `json:"amount"`
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
