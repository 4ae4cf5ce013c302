package dto

type RegisterUserRequest struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"isAdmin"`
}

type CreateEventRequest struct {
	Name string `json:"name"`
}

type OptionInput struct {
	Label string  `json:"label"`
	Odds  float64 `json:"odds"`
}

type CreateQuestionRequest struct {
	Text    string        `json:"text"`
	Options []OptionInput `json:"options"`
}

type PlaceBetRequest struct {
	UserID     string `json:"userId"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
	Amount     int64  `json:"amount"`
}

type SettleQuestionRequest struct {
	WinningOptionID string `json:"winningOptionId"`
}
