package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/campus-bet-ledger/internal/ledger-service/dto"
	"github.com/radieske/campus-bet-ledger/internal/ledger-service/export"
	"github.com/radieske/campus-bet-ledger/internal/ledger-service/repo"
	"github.com/radieske/campus-bet-ledger/pkg/contracts/events"
	"github.com/radieske/campus-bet-ledger/pkg/rank"
)

// Store define as operações do ledger usadas pelos handlers HTTP
type Store interface {
	CreateUser(ctx context.Context, rollNumber, name string, isAdmin bool) (*repo.User, error)
	GetUser(ctx context.Context, id string) (*repo.User, error)
	CreateEvent(ctx context.Context, name string) (*repo.Event, error)
	GetEvent(ctx context.Context, id string) (*repo.Event, error)
	ListEvents(ctx context.Context, onlyActive bool) ([]repo.Event, error)
	ToggleEvent(ctx context.Context, id string) (*repo.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateQuestion(ctx context.Context, eventID, text string, opts []repo.OptionInput) (*repo.QuestionWithOptions, error)
	ListQuestions(ctx context.Context, eventID string) ([]repo.QuestionWithOptions, error)
	ToggleQuestion(ctx context.Context, id string) (*repo.Question, error)
	PlaceBet(ctx context.Context, userID, questionID, optionID string, amount int64) (*repo.Bet, error)
	SettleQuestion(ctx context.Context, questionID, winningOptionID string) (*repo.SettlementReport, error)
	ListUserBets(ctx context.Context, userID string) ([]repo.UserBet, error)
	ListBettors(ctx context.Context) ([]rank.Entrant, error)
	ListBetRows(ctx context.Context) ([]repo.BetExportRow, error)
}

// StandingsCache é o cache de classificação alimentado pelo leaderboard-worker
type StandingsCache interface {
	Get(ctx context.Context) ([]rank.Standing, bool, error)
	Set(ctx context.Context, s []rank.Standing) error
}

// Publisher publica os eventos do ledger (best-effort, fora da transação)
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishQuestionSettled(ctx context.Context, e events.QuestionSettled) error
}

// Server expõe a API HTTP do ledger de pontos
type Server struct {
	log   *zap.Logger
	store Store
	cache StandingsCache
	publ  Publisher

	// callbacks de métricas, ligadas no main
	OnBetPlaced func()
	OnSettled   func(betsSettled int, totalPaid int64)
}

func NewServer(log *zap.Logger, store Store, cache StandingsCache, publ Publisher) *Server {
	return &Server{log: log, store: store, cache: cache, publ: publ}
}

// Router retorna o mux HTTP com as rotas da API
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", s.registerUser)      // POST
	mux.HandleFunc("/users/", s.getUser)          // GET /users/{id}
	mux.HandleFunc("/events", s.events)           // POST, GET ?active=true
	mux.HandleFunc("/events/", s.eventByID)       // GET|DELETE {id}, POST {id}/toggle, POST|GET {id}/questions
	mux.HandleFunc("/questions/", s.questionByID) // POST {id}/toggle, POST {id}/settle
	mux.HandleFunc("/bets", s.bets)               // POST, GET ?userId=...
	mux.HandleFunc("/leaderboard", s.leaderboard) // GET
	mux.HandleFunc("/export", s.exportBets)       // GET
	return mux
}

// writeErr mapeia os erros-sentinela do repositório para status HTTP
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, repo.ErrInvalidAmount),
		errors.Is(err, repo.ErrInvalidOdds),
		errors.Is(err, repo.ErrTooFewOptions):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repo.ErrQuestionClosed),
		errors.Is(err, repo.ErrInsufficientBalance),
		errors.Is(err, repo.ErrDuplicateBet),
		errors.Is(err, repo.ErrAlreadySettled),
		errors.Is(err, repo.ErrInvalidOption),
		errors.Is(err, repo.ErrRollNumberTaken),
		errors.Is(err, repo.ErrEventNameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.RollNumber == "" || req.Name == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	u, err := s.store.CreateUser(r.Context(), req.RollNumber, req.Name, req.IsAdmin)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, userResponse(u))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	u, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, userResponse(u))
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req dto.CreateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		e, err := s.store.CreateEvent(r.Context(), req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, eventResponse(e))
	case http.MethodGet:
		onlyActive := r.URL.Query().Get("active") == "true"
		list, err := s.store.ListEvents(r.Context(), onlyActive)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]dto.EventResponse, 0, len(list))
		for i := range list {
			out = append(out, eventResponse(&list[i]))
		}
		writeJSON(w, out)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// eventByID trata /events/{id}, /events/{id}/toggle e /events/{id}/questions
func (s *Server) eventByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	id := parts[0]
	if id == "" {
		http.Error(w, "eventId required", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		e, err := s.store.GetEvent(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, eventResponse(e))
	case len(parts) == 1 && r.Method == http.MethodDelete:
		if err := s.store.DeleteEvent(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "toggle" && r.Method == http.MethodPost:
		e, err := s.store.ToggleEvent(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, eventResponse(e))
	case len(parts) == 2 && parts[1] == "questions" && r.Method == http.MethodPost:
		var req dto.CreateQuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Text == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		opts := make([]repo.OptionInput, 0, len(req.Options))
		for _, o := range req.Options {
			opts = append(opts, repo.OptionInput{Label: o.Label, Odds: o.Odds})
		}
		q, err := s.store.CreateQuestion(r.Context(), id, req.Text, opts)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, questionResponse(q))
	case len(parts) == 2 && parts[1] == "questions" && r.Method == http.MethodGet:
		list, err := s.store.ListQuestions(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]dto.QuestionResponse, 0, len(list))
		for i := range list {
			out = append(out, questionResponse(&list[i]))
		}
		writeJSON(w, out)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// questionByID trata /questions/{id}/toggle e /questions/{id}/settle
func (s *Server) questionByID(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/questions/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := parts[0]

	switch parts[1] {
	case "toggle":
		q, err := s.store.ToggleQuestion(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, questionResponse(&repo.QuestionWithOptions{Question: *q}))
	case "settle":
		var req dto.SettleQuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.WinningOptionID == "" {
			http.Error(w, "winningOptionId required", http.StatusBadRequest)
			return
		}
		report, err := s.store.SettleQuestion(r.Context(), id, req.WinningOptionID)
		if err != nil {
			writeErr(w, err)
			return
		}

		var totalPaid int64
		winners := make([]dto.WinnerPayoutResponse, 0, len(report.Winners))
		for _, wp := range report.Winners {
			totalPaid += wp.Payout
			winners = append(winners, dto.WinnerPayoutResponse{UserID: wp.UserID, Payout: wp.Payout})
		}
		if s.OnSettled != nil {
			s.OnSettled(report.BetsSettled, totalPaid)
		}
		if err := s.publ.PublishQuestionSettled(r.Context(), events.QuestionSettled{
			QuestionID:      report.QuestionID,
			WinningOptionID: report.WinningOptionID,
			BetsSettled:     report.BetsSettled,
			TotalPaid:       totalPaid,
		}); err != nil {
			// liquidação já commitada; o worker se recupera pelo TTL do cache
			s.log.Warn("publish question_settled failed", zap.String("questionId", report.QuestionID), zap.Error(err))
		}

		writeJSON(w, dto.SettlementResponse{
			QuestionID:      report.QuestionID,
			WinningOptionID: report.WinningOptionID,
			BetsSettled:     report.BetsSettled,
			Winners:         winners,
		})
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) bets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req dto.PlaceBetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.QuestionID == "" || req.OptionID == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		b, err := s.store.PlaceBet(r.Context(), req.UserID, req.QuestionID, req.OptionID, req.Amount)
		if err != nil {
			writeErr(w, err)
			return
		}
		if s.OnBetPlaced != nil {
			s.OnBetPlaced()
		}
		if err := s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
			BetID:      b.ID,
			UserID:     b.UserID,
			QuestionID: b.QuestionID,
			OptionID:   b.OptionID,
			Amount:     b.Amount,
		}); err != nil {
			s.log.Warn("publish bet_placed failed", zap.String("betId", b.ID), zap.Error(err))
		}
		writeJSONStatus(w, http.StatusCreated, betResponse(b))
	case http.MethodGet:
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "userId required", http.StatusBadRequest)
			return
		}
		list, err := s.store.ListUserBets(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]dto.UserBetResponse, 0, len(list))
		for _, ub := range list {
			out = append(out, dto.UserBetResponse{
				BetResponse: betResponse(&ub.Bet),
				Question:    ub.QuestionText,
				Option:      ub.OptionLabel,
				Odds:        ub.Odds,
			})
		}
		writeJSON(w, out)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// leaderboard serve a classificação: tenta o cache do worker e, em miss,
// recalcula do banco e repovoa. Os dois caminhos passam por rank.Standings,
// então a resposta é a mesma independente da origem.
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, hit, err := s.cache.Get(r.Context())
	if err != nil {
		s.log.Warn("standings cache get failed", zap.Error(err))
	}
	if !hit {
		entrants, err := s.store.ListBettors(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		list = rank.Standings(entrants)
		if err := s.cache.Set(r.Context(), list); err != nil {
			s.log.Warn("standings cache set failed", zap.Error(err))
		}
	}

	out := make([]dto.StandingResponse, 0, len(list))
	for _, st := range list {
		out = append(out, dto.StandingResponse{
			Rank:       st.Rank,
			UserID:     st.UserID,
			RollNumber: st.RollNumber,
			Name:       st.Name,
			Balance:    st.Balance,
		})
	}
	writeJSON(w, dto.LeaderboardResponse{Standings: out})
}

func (s *Server) exportBets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := s.store.ListBetRows(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bets.csv"`)
	if err := export.WriteBets(w, rows); err != nil {
		s.log.Warn("csv export failed", zap.Error(err))
	}
}

func userResponse(u *repo.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, RollNumber: u.RollNumber, Name: u.Name, Balance: u.Balance, IsAdmin: u.IsAdmin}
}

func eventResponse(e *repo.Event) dto.EventResponse {
	return dto.EventResponse{ID: e.ID, Name: e.Name, IsActive: e.IsActive}
}

func questionResponse(q *repo.QuestionWithOptions) dto.QuestionResponse {
	out := dto.QuestionResponse{
		ID:              q.ID,
		EventID:         q.EventID,
		Text:            q.Text,
		IsOpen:          q.IsOpen,
		WinningOptionID: q.WinningOptionID,
	}
	for _, o := range q.Options {
		out.Options = append(out.Options, dto.OptionResponse{ID: o.ID, Label: o.Label, Odds: o.Odds})
	}
	return out
}

func betResponse(b *repo.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:      b.ID,
		UserID:     b.UserID,
		QuestionID: b.QuestionID,
		OptionID:   b.OptionID,
		Amount:     b.Amount,
		Status:     b.Status,
		PlacedAt:   b.PlacedAt,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus idem, com status explícito (o Content-Type precisa sair antes do status)
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
