package dto

import "time"

type UserResponse struct {
	ID         string `json:"id"`
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Balance    int64  `json:"balance"`
	IsAdmin    bool   `json:"isAdmin"`
}

type EventResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type OptionResponse struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Odds  float64 `json:"odds"`
}

type QuestionResponse struct {
	ID              string           `json:"id"`
	EventID         string           `json:"eventId"`
	Text            string           `json:"text"`
	IsOpen          bool             `json:"isOpen"`
	WinningOptionID *string          `json:"winningOptionId,omitempty"`
	Options         []OptionResponse `json:"options,omitempty"`
}

type BetResponse struct {
	BetID      string    `json:"betId"`
	UserID     string    `json:"userId"`
	QuestionID string    `json:"questionId"`
	OptionID   string    `json:"optionId"`
	Amount     int64     `json:"amount"`
	Status     string    `json:"status"`
	PlacedAt   time.Time `json:"placedAt"`
}

type UserBetResponse struct {
	BetResponse
	Question string  `json:"question"`
	Option   string  `json:"option"`
	Odds     float64 `json:"odds"`
}

type WinnerPayoutResponse struct {
	UserID string `json:"userId"`
	Payout int64  `json:"payout"`
}

type SettlementResponse struct {
	QuestionID      string                 `json:"questionId"`
	WinningOptionID string                 `json:"winningOptionId"`
	BetsSettled     int                    `json:"betsSettled"`
	Winners         []WinnerPayoutResponse `json:"winners"`
}

type StandingResponse struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"userId"`
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Balance    int64  `json:"balance"`
}

type LeaderboardResponse struct {
	Standings []StandingResponse `json:"standings"`
}
