package errors

import "fmt"

// Error codes for the progression engine.
const (
	// Domain errors
	ErrCodeProgressNotFound  = "PROGRESS_NOT_FOUND"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUserExists        = "USER_EXISTS"
	ErrCodeUnknownMission    = "UNKNOWN_MISSION"
	ErrCodeUnknownSkill      = "UNKNOWN_SKILL"
	ErrCodeUnknownLevel      = "UNKNOWN_LEVEL"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeSkillLocked       = "SKILL_LOCKED"

	// Persistence errors
	ErrCodeRemoteUnavailable = "REMOTE_UNAVAILABLE"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"

	// Config errors
	ErrCodeConfigInvalid = "CONFIG_INVALID"

	// Validation errors
	ErrCodeValidationMismatch = "VALIDATION_MISMATCH"
	ErrCodeInvalidInput       = "INVALID_INPUT"
)

// GameError represents an error in the progression engine.
type GameError struct {
	Code    string
	Message string
	Err     error
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// NewGameError creates a new GameError.
func NewGameError(code, message string, err error) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is a *GameError carrying the given code.
func HasCode(err error, code string) bool {
	ge, ok := err.(*GameError)
	return ok && ge.Code == code
}

// Domain-specific error constructors

// ErrProgressNotFound returns an error when no progress record exists for a user.
func ErrProgressNotFound(userID int) *GameError {
	return &GameError{
		Code:    ErrCodeProgressNotFound,
		Message: fmt.Sprintf("game progress not found for user %d", userID),
	}
}

// ErrUserNotFound returns an error when a user does not exist.
func ErrUserNotFound(userID int) *GameError {
	return &GameError{
		Code:    ErrCodeUserNotFound,
		Message: fmt.Sprintf("user not found: %d", userID),
	}
}

// ErrUserExists returns an error when a username is already taken.
func ErrUserExists(username string) *GameError {
	return &GameError{
		Code:    ErrCodeUserExists,
		Message: fmt.Sprintf("username already exists: %s", username),
	}
}

// ErrUnknownMission returns an error for a mission id absent from the catalog.
func ErrUnknownMission(missionID string) *GameError {
	return &GameError{
		Code:    ErrCodeUnknownMission,
		Message: fmt.Sprintf("unknown mission: %s", missionID),
	}
}

// ErrUnknownSkill returns an error for a skill id absent from the catalog.
func ErrUnknownSkill(skillID string) *GameError {
	return &GameError{
		Code:    ErrCodeUnknownSkill,
		Message: fmt.Sprintf("unknown skill: %s", skillID),
	}
}

// ErrInsufficientFunds returns an error when a spend exceeds the balance.
func ErrInsufficientFunds(amount, balance int) *GameError {
	return &GameError{
		Code:    ErrCodeInsufficientFunds,
		Message: fmt.Sprintf("cannot spend %d with balance %d", amount, balance),
	}
}

// ErrRemoteUnavailable wraps a remote-store connectivity failure.
func ErrRemoteUnavailable(operation string, err error) *GameError {
	return &GameError{
		Code:    ErrCodeRemoteUnavailable,
		Message: fmt.Sprintf("remote store unavailable during %s", operation),
		Err:     err,
	}
}

// ErrDatabaseError wraps database errors.
func ErrDatabaseError(operation string, err error) *GameError {
	return &GameError{
		Code:    ErrCodeDatabaseError,
		Message: fmt.Sprintf("database error during %s", operation),
		Err:     err,
	}
}

// ErrCacheError wraps local snapshot cache errors.
func ErrCacheError(operation string, err error) *GameError {
	return &GameError{
		Code:    ErrCodeCacheError,
		Message: fmt.Sprintf("local cache error during %s", operation),
		Err:     err,
	}
}

// ErrConfigInvalid returns an error for invalid catalog configuration.
func ErrConfigInvalid(reason string) *GameError {
	return &GameError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
	}
}

// ErrValidationMismatch returns an error for a path/body disagreement.
func ErrValidationMismatch(field, reason string) *GameError {
	return &GameError{
		Code:    ErrCodeValidationMismatch,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}
