package topics

const (
	// Bets
	BetPlaced = "bet_placed"

	// Settlement
	QuestionSettled = "question_settled"

	// DLQs
	QuestionSettledDLQ = "question_settled_dlq"
)
