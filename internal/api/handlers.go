package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"blackjack21/internal/deckapi"
	"blackjack21/internal/game"
	"blackjack21/internal/logging"
	"blackjack21/internal/round"
	"blackjack21/internal/session"
)

const maxBodyBytes = 64 << 10

type startResponse struct {
	Message   string      `json:"message"`
	GameStats *game.Round `json:"gameStats"`
}

type getCardRequest struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

type getCardResponse struct {
	Message   string      `json:"message"`
	Card      game.Card   `json:"card"`
	GameStats *game.Round `json:"gameStats"`
}

type putRoundRequest struct {
	PlayerCards *game.Hand `json:"playerCards"`
	DealerCards *game.Hand `json:"dealerCards"`
	Winner      *string    `json:"winner"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	rd, err := s.sessions.Start(r.Context())
	if err != nil {
		s.fail(w, "failed to start game", err, true)
		return
	}
	writeJSON(w, http.StatusOK, startResponse{Message: "game started", GameStats: rd})
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	var req getCardRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.GameID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "gameId is required"})
		return
	}

	rd, card, err := s.sessions.Draw(r.Context(), req.GameID, req.Player)
	if err != nil {
		s.fail(w, "failed to draw card", err, true)
		return
	}
	writeJSON(w, http.StatusOK, getCardResponse{Message: "card drawn", Card: card, GameStats: rd})
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	rd, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, "failed to get game", err, false)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

func (s *Server) handlePutRound(w http.ResponseWriter, r *http.Request) {
	var req putRoundRequest
	if err := decodeBody(w, r, &req); err != nil {
		msg := "invalid request body"
		if errors.Is(err, game.ErrInvalidCardValue) {
			msg = err.Error()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
		return
	}

	p := session.Patch{PlayerCards: req.PlayerCards, DealerCards: req.DealerCards}
	if req.Winner != nil {
		o := game.Outcome(*req.Winner)
		p.Winner = &o
	}

	rd, err := s.sessions.Overwrite(r.Context(), r.PathValue("id"), p)
	if err != nil {
		s.fail(w, "failed to update game", err, false)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

// fail maps err onto a status. fromProvider marks card data that came from
// the deck provider, where a bad card is an upstream fault, not a client one.
func (s *Server) fail(w http.ResponseWriter, msg string, err error, fromProvider bool) {
	status := statusFor(err, fromProvider)
	if status >= http.StatusInternalServerError {
		logging.L.Error(msg, "err", err)
	}

	text := msg
	if status < http.StatusInternalServerError {
		text = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: text})
}

func statusFor(err error, fromProvider bool) int {
	switch {
	case errors.Is(err, round.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidSide), errors.Is(err, session.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrRoundDecided):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidCardValue):
		if fromProvider {
			return http.StatusBadGateway
		}
		return http.StatusBadRequest
	case errors.Is(err, deckapi.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.L.Warn("failed to write response", "err", err)
	}
}
