package bracket

import (
	"errors"
	"fmt"
)

// RejectionCode identifies why a command was refused. Codes are stable so the
// HTTP layer can map them without parsing messages.
type RejectionCode string

const (
	RejectRoundNotFound      RejectionCode = "round_not_found"
	RejectMatchNotFound      RejectionCode = "match_not_found"
	RejectPlayerNotFound     RejectionCode = "player_not_found"
	RejectFrozenRound        RejectionCode = "frozen_round"
	RejectNotAtSource        RejectionCode = "not_at_source"
	RejectEmptySelection     RejectionCode = "empty_selection"
	RejectNoCompletedMatch   RejectionCode = "no_completed_match"
	RejectDormantGap         RejectionCode = "dormant_gap"
	RejectBehindWinningRound RejectionCode = "behind_winning_round"
	RejectParity             RejectionCode = "parity"
	RejectOddPool            RejectionCode = "odd_pool"
	RejectNothingToPair      RejectionCode = "nothing_to_pair"
	RejectDuplicateRoundName RejectionCode = "duplicate_round_name"
	RejectRoundNotLast       RejectionCode = "round_not_last"
	RejectRoundNotEmpty      RejectionCode = "round_not_empty"
	RejectAlreadyFrozen      RejectionCode = "already_frozen"
	RejectUnpairedPlayers    RejectionCode = "unpaired_players"
	RejectMatchesUnfinished  RejectionCode = "matches_unfinished"
	RejectMatchNotPending    RejectionCode = "match_not_pending"
	RejectMatchCompleted     RejectionCode = "match_completed"
	RejectWinnerNotInMatch   RejectionCode = "winner_not_in_match"
	RejectSameWinner         RejectionCode = "same_winner"
	RejectBadRank            RejectionCode = "bad_rank"
	RejectNotInDraft         RejectionCode = "not_in_draft"
)

// Rejection is a validation refusal. It never wraps an I/O failure; the
// message is specific enough for the UI to surface verbatim.
type Rejection struct {
	Code    RejectionCode
	Message string
}

func (r *Rejection) Error() string { return r.Message }

func reject(code RejectionCode, format string, args ...interface{}) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a *Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
