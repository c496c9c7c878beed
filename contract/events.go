/*
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"encoding/json"
	"time"

	"github.com/edge-market/auction-chaincode/auction"
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/pkg/errors"
)

// Chaincode event names. Fabric keeps one event per transaction.
const (
	EventBiddingStarted = "BiddingStarted"
	EventOfferAccepted  = "OfferAccepted"
	EventBiddingClosed  = "BiddingClosed"
)

// AuctionEvent is the payload of every auction chaincode event.
type AuctionEvent struct {
	TxID      string          `json:"txId"`
	AuctionID string          `json:"auctionId"`
	RequestID string          `json:"requestId"`
	State     string          `json:"state"`
	SellerID  string          `json:"sellerId,omitempty"`
	BidPrice  *auction.Amount `json:"bidPrice,omitempty"`
	Submitter string          `json:"submitter,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

func newAuctionEvent(ctx TransactionContextInterface, a *auction.Auction) *AuctionEvent {
	stub := ctx.GetStub()
	event := &AuctionEvent{
		TxID:      stub.GetTxID(),
		AuctionID: a.AuctionID,
		RequestID: a.RequestID,
		State:     a.State.String(),
	}

	// identity and timestamp are informational; mock stubs carry neither
	if mspID, err := cid.GetMSPID(stub); err == nil {
		event.Submitter = mspID
	} else {
		logger.Debugf("no submitter identity for tx %s: %v", event.TxID, err)
	}
	if ts, err := stub.GetTxTimestamp(); err == nil && ts != nil {
		event.Timestamp = ts.AsTime().UTC().Format(time.RFC3339Nano)
	}
	return event
}

func emit(ctx TransactionContextInterface, name string, event *AuctionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s event", name)
	}
	if err := ctx.GetStub().SetEvent(name, payload); err != nil {
		return errors.Wrapf(err, "failed to set %s event", name)
	}
	return nil
}
