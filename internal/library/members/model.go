package members

import (
	"time"

	"github.com/shopspring/decimal"
)

type Member struct {
	ID       int64
	Username string
	Email    string
}

// Fine is a Fine row joined with the member's username.
type Fine struct {
	ID             int64
	MemberID       int64
	MemberUsername string
	Amount         decimal.Decimal
	Reason         string
	DateAssessed   time.Time
}
