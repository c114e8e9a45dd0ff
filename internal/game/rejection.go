package game

import "fmt"

type Reason string

const (
	ReasonInvalidMinutes        Reason = "invalid_minutes"
	ReasonInvalidAmount         Reason = "invalid_amount"
	ReasonUnknownActivity       Reason = "unknown_activity"
	ReasonInvalidResource       Reason = "invalid_resource"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonTileNotFound          Reason = "tile_not_found"
	ReasonNotInvestable         Reason = "not_investable"
	ReasonMaxLevel              Reason = "max_level"
	ReasonRegionMismatch        Reason = "region_mismatch"
)

// Rejection is a business-rule refusal. Nothing was written when one is
// returned.
type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}
