/*
SPDX-License-Identifier: Apache-2.0
*/

package auction

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// NotDecided is the winnerId of a request that has not been settled yet.
const NotDecided = "Not Decided"

// State is the lifecycle state of an auction.
type State int

const (
	Pending State = iota + 1
	ReserveNotMet
	Finished
)

var stateText = map[State]string{
	Pending:       "PENDING",
	ReserveNotMet: "RESERVE_NOT_MET",
	Finished:      "FINISHED",
}

func (s State) String() string {
	if text, ok := stateText[s]; ok {
		return text
	}
	return "UNKNOWN"
}

// ParseState maps a state text such as "PENDING" back to its State.
func ParseState(text string) (State, error) {
	for state, t := range stateText {
		if t == text {
			return state, nil
		}
	}
	return 0, newError(ErrInvalidArgument, "unknown auction state %q", text)
}

func (s State) MarshalJSON() ([]byte, error) {
	if _, ok := stateText[s]; !ok {
		return nil, newError(ErrInvalidArgument, "unknown auction state %d", int(s))
	}
	return json.Marshal(s.String())
}

// legacyState is the {code,text} object the JavaScript chaincode stored,
// itself JSON-encoded into a string.
type legacyState struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (s *State) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	if strings.HasPrefix(strings.TrimSpace(text), "{") {
		var legacy legacyState
		if err := json.Unmarshal([]byte(text), &legacy); err != nil {
			return err
		}
		text = legacy.Text
	}
	parsed, err := ParseState(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Amounts beyond these bounds are rejected before they are ever formatted.
const (
	maxAmountLen      = 128
	maxAmountExponent = 64
)

// Amount is an exact decimal used for prices and delays. It is written as a
// bare JSON number and read from either a number or a quoted number.
type Amount struct {
	decimal.Decimal
}

// ParseAmount converts a textual argument into an Amount. field names the
// argument in the error.
func ParseAmount(field, text string) (Amount, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) > maxAmountLen {
		return Amount{}, newError(ErrInvalidArgument, "%s is out of range", field)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, newError(ErrInvalidArgument, "%s must be numeric, got %q", field, text)
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return Amount{}, newError(ErrInvalidArgument, "%s is out of range, got %q", field, text)
	}
	return Amount{d}, nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(text string) Amount {
	return Amount{decimal.RequireFromString(text)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Request is a buyer's service need.
type Request struct {
	RequestID    string `json:"requestId"`
	OwnerID      string `json:"ownerId"`
	WinnerID     string `json:"winnerId"`
	ReserveDelay Amount `json:"reserveDelay"`
	Conditions   string `json:"conditions"`
}

// UnmarshalJSON also reads conditions from "condtions", the key the
// JavaScript chaincode wrote them under. "conditions" wins when both exist.
func (r *Request) UnmarshalJSON(data []byte) error {
	type plain Request
	var aux struct {
		plain
		Conditions *string `json:"conditions"`
		Legacy     *string `json:"condtions"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Request(aux.plain)
	switch {
	case aux.Conditions != nil:
		r.Conditions = *aux.Conditions
	case aux.Legacy != nil:
		r.Conditions = *aux.Legacy
	}
	return nil
}

// Offer is one seller's bid.
type Offer struct {
	BidPrice Amount `json:"bidPrice"`
	SellerID string `json:"sellerId"`
}

// Auction is one bidding round over a Request. ReserveDelay is the value the
// request had when bidding started.
type Auction struct {
	AuctionID    string  `json:"auctionId"`
	ReserveDelay Amount  `json:"reserveDelay"`
	State        State   `json:"state"`
	RequestID    string  `json:"requestId"`
	Offers       []Offer `json:"offers"`
}

// Winner returns the winning offer of a finished auction. Offers of a closed
// auction are kept sorted by price descending, so the winner is the last one.
func (a *Auction) Winner() (Offer, bool) {
	if a.State != Finished || len(a.Offers) == 0 {
		return Offer{}, false
	}
	return a.Offers[len(a.Offers)-1], true
}
