package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

func (h *RoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Create(r.Context(), tournamentID, input.DisplayName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Rename(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundID, err := uuidParam(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Rename(r.Context(), tournamentID, roundID, input.DisplayName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundID, err := uuidParam(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Freeze(r.Context(), tournamentID, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) Close(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundID, err := uuidParam(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roundService.Close(r.Context(), tournamentID, roundID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RoundHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundID, err := uuidParam(r, "roundID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Shuffle(r.Context(), tournamentID, roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type moveInput struct {
	PlayerIDs []uuid.UUID   `json:"player_ids"`
	From      locationInput `json:"from"`
	To        locationInput `json:"to"`
}

type locationInput struct {
	Pool    bool      `json:"pool"`
	RoundID uuid.UUID `json:"round_id"`
	List    string    `json:"list"`
}

func (in locationInput) toLocation() (bracket.Location, error) {
	if in.Pool {
		return bracket.PoolLocation(), nil
	}
	if in.RoundID == uuid.Nil {
		return bracket.Location{}, errors.New("location must be the pool or name a round")
	}
	switch bracket.ListKind(in.List) {
	case bracket.ListPlayers, bracket.ListWinners, bracket.ListLosers:
		return bracket.RoundLocation(in.RoundID, bracket.ListKind(in.List)), nil
	case "":
		return bracket.RoundLocation(in.RoundID, bracket.ListPlayers), nil
	default:
		return bracket.Location{}, errors.New("list must be one of players, winners, losers")
	}
}

// Move transfers a selection of players between the staging pool and round
// lists. The response reports which players moved and which were skipped.
func (h *RoundHandler) Move(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuidParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input moveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	from, err := input.From.toLocation()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	to, err := input.To.toLocation()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	eff, err := h.roundService.Move(r.Context(), tournamentID, bracket.MoveCommand{
		PlayerIDs: input.PlayerIDs,
		From:      from,
		To:        to,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"moved":   eff.Moved,
		"skipped": eff.Skipped,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
