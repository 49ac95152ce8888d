package bracket

// Policy holds the tournament-progression rules that are product decisions
// rather than consequences of the bracket topology. Each gate can be relaxed
// independently; DefaultPolicy carries the rules the organizer product ships
// with.
type Policy struct {
	// RequireCompletedMatchToAdvance demands at least one completed match in
	// the source round before players may move forward out of it.
	RequireCompletedMatchToAdvance bool

	// ForbidSkippingDormantRounds refuses forward moves that jump over a
	// round in which nothing has happened yet.
	ForbidSkippingDormantRounds bool

	// BoundWinnerBackMoves stops a winner from moving back past the round it
	// most recently won.
	BoundWinnerBackMoves bool

	// EnforceEvenPairing requires the destination round's unpaired player
	// count to be even after a move into its player list.
	EnforceEvenPairing bool

	// MaxRankedWinners caps the ranking edit buffer.
	MaxRankedWinners int
}

func DefaultPolicy() Policy {
	return Policy{
		RequireCompletedMatchToAdvance: true,
		ForbidSkippingDormantRounds:    true,
		BoundWinnerBackMoves:           true,
		EnforceEvenPairing:             true,
		MaxRankedWinners:               5,
	}
}
