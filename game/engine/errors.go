package engine

import "errors"

// ruleError is a sentinel that belongs to a family. errors.Is matches the
// sentinel itself, its family and ErrGame.
type ruleError struct {
	msg    string
	family error
}

func (e *ruleError) Error() string { return e.msg }
func (e *ruleError) Unwrap() error { return e.family }

func newRuleError(msg string, family error) error {
	return &ruleError{msg: msg, family: family}
}

var (
	// ErrGame is the root of every rule violation raised by the engine.
	ErrGame = errors.New("game error")

	// ErrInvalidSelection covers bad card/marble choices made before any action runs.
	ErrInvalidSelection = newRuleError("invalid selection", ErrGame)
	// ErrAction covers selections that cannot execute against the current board.
	ErrAction = newRuleError("illegal action", ErrGame)

	ErrInvalidCard     = newRuleError("invalid card", ErrInvalidSelection)
	ErrInvalidMarble   = newRuleError("invalid marble", ErrInvalidSelection)
	ErrSplitOutOfRange = newRuleError("split distance out of range", ErrInvalidSelection)

	ErrIllegalMovement = newRuleError("illegal movement", ErrAction)
	ErrIllegalSwap     = newRuleError("illegal swap", ErrAction)
	ErrIllegalDestroy  = newRuleError("illegal destroy", ErrAction)
	ErrCannotField     = newRuleError("cannot field marble", ErrAction)
	ErrCannotDiscard   = newRuleError("cannot discard", ErrAction)

	// ErrGameOver is returned for any play attempted after the game ended.
	ErrGameOver = errors.New("game is over")
)

// IsSelectionError reports whether err is an InvalidSelection-family error
func IsSelectionError(err error) bool {
	return errors.Is(err, ErrInvalidSelection)
}

// IsActionError reports whether err is an Action-family error
func IsActionError(err error) bool {
	return errors.Is(err, ErrAction)
}
