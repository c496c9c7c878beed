/*
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"encoding/json"
	"fmt"

	"github.com/edge-market/auction-chaincode/auction"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("auction_cc")

// ContractName is the namespace of the auction contract. It is also the
// default contract, so bare function names route to it.
const ContractName = "AuctionEvents"

// AuctionContract exposes the reverse auction as chaincode transactions.
// Every transaction takes and returns plain strings; records travel as JSON.
type AuctionContract struct {
	contractapi.Contract
}

// GetEvaluateTransactions lists the read-only transactions.
func (c *AuctionContract) GetEvaluateTransactions() []string {
	return []string{"GetState", "ReadRequest", "ReadAuction", "QueryAuctions"}
}

// AddRequest posts a buyer's request. Re-using a requestId replaces the
// earlier request.
func (c *AuctionContract) AddRequest(ctx TransactionContextInterface, requestID string, ownerID string, reserveDelay string, conditions string) (string, error) {
	request, err := ctx.Ledger().AddRequest(requestID, ownerID, reserveDelay, conditions)
	if err != nil {
		return "", err
	}
	return toJSON(request)
}

// StartBidding opens auctionId over an existing request.
func (c *AuctionContract) StartBidding(ctx TransactionContextInterface, auctionID string, requestID string) (string, error) {
	a, err := ctx.Ledger().StartBidding(auctionID, requestID)
	if err != nil {
		return "", err
	}
	if err := emit(ctx, EventBiddingStarted, newAuctionEvent(ctx, a)); err != nil {
		return "", err
	}
	return toJSON(a)
}

// Offer submits a seller's bid for a pending auction.
func (c *AuctionContract) Offer(ctx TransactionContextInterface, bidPrice string, delay string, auctionID string, sellerID string) (string, error) {
	a, err := ctx.Ledger().Offer(bidPrice, delay, auctionID, sellerID)
	if err != nil {
		return "", err
	}

	event := newAuctionEvent(ctx, a)
	last := a.Offers[len(a.Offers)-1]
	event.SellerID = last.SellerID
	event.BidPrice = &last.BidPrice
	if err := emit(ctx, EventOfferAccepted, event); err != nil {
		return "", err
	}
	return toJSON(a)
}

// CloseBidding settles the auction and records the lowest bidder as the
// request's winner.
func (c *AuctionContract) CloseBidding(ctx TransactionContextInterface, auctionID string) (string, error) {
	a, err := ctx.Ledger().CloseBidding(auctionID)
	if err != nil {
		return "", err
	}

	event := newAuctionEvent(ctx, a)
	if winner, ok := a.Winner(); ok {
		event.SellerID = winner.SellerID
		event.BidPrice = &winner.BidPrice
	}
	if err := emit(ctx, EventBiddingClosed, event); err != nil {
		return "", err
	}
	return toJSON(a)
}

// GetState returns the request or auction stored under key.
func (c *AuctionContract) GetState(ctx TransactionContextInterface, key string) (string, error) {
	data, err := ctx.Ledger().GetState(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadRequest returns the request stored under requestId.
func (c *AuctionContract) ReadRequest(ctx TransactionContextInterface, requestID string) (string, error) {
	request, err := ctx.Ledger().Request(requestID)
	if err != nil {
		return "", err
	}
	return toJSON(request)
}

// ReadAuction returns the auction stored under auctionId.
func (c *AuctionContract) ReadAuction(ctx TransactionContextInterface, auctionID string) (string, error) {
	a, err := ctx.Ledger().Auction(auctionID)
	if err != nil {
		return "", err
	}
	return toJSON(a)
}

// QueryAuctions returns all auctions as a JSON array, optionally only those in
// the given state ("PENDING", "RESERVE_NOT_MET" or "FINISHED").
func (c *AuctionContract) QueryAuctions(ctx TransactionContextInterface, state string) (string, error) {
	var filter auction.State
	if state != "" {
		parsed, err := auction.ParseState(state)
		if err != nil {
			return "", err
		}
		filter = parsed
	}

	auctions, err := auction.Auctions(ctx.GetStub(), filter)
	if err != nil {
		return "", err
	}
	return toJSON(auctions)
}

func toJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode result")
	}
	return string(data), nil
}

func beforeTransaction(ctx TransactionContextInterface) error {
	fn, args := ctx.GetStub().GetFunctionAndParameters()
	logger.Debugf("invoke transaction fn=%s, args=%+v, txid=%s", fn, args, ctx.GetStub().GetTxID())
	return nil
}

func unknownTransaction(ctx TransactionContextInterface) error {
	fn, _ := ctx.GetStub().GetFunctionAndParameters()
	logger.Warningf("invoke did not find func: %s", fn)
	return fmt.Errorf("Received unknown function invocation %s", fn)
}
