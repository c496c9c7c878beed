/*
SPDX-License-Identifier: Apache-2.0
*/

// Package auction implements the reverse-auction state machine: buyers post
// requests, sellers submit offers, and closing an auction awards the request
// to the lowest bid.
package auction

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/hyperledger/fabric/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("auction")

// Ledger runs auction operations against the world state of one transaction.
// Every operation validates before it writes, so a failed call leaves the
// store untouched.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// AddRequest stores a new request keyed by requestID. An existing record under
// the same key is overwritten.
func (l *Ledger) AddRequest(requestID, ownerID, reserveDelay, conditions string) (*Request, error) {
	delay, err := ParseAmount("reserveDelay", reserveDelay)
	if err != nil {
		return nil, err
	}

	request := &Request{
		RequestID:    requestID,
		OwnerID:      ownerID,
		WinnerID:     NotDecided,
		ReserveDelay: delay,
		Conditions:   conditions,
	}
	if _, err := writeRecord(l.store, requestID, request); err != nil {
		return nil, err
	}
	logger.Infof("request %s added by %s with reserve delay %s", requestID, ownerID, delay)
	return request, nil
}

// StartBidding opens an auction for an existing request. An existing record
// under auctionID is overwritten.
func (l *Ledger) StartBidding(auctionID, requestID string) (*Auction, error) {
	request, err := l.Request(requestID)
	if err != nil {
		return nil, err
	}

	auction := &Auction{
		AuctionID:    auctionID,
		ReserveDelay: request.ReserveDelay,
		State:        Pending,
		RequestID:    requestID,
		Offers:       []Offer{},
	}
	if _, err := writeRecord(l.store, auctionID, auction); err != nil {
		return nil, err
	}
	logger.Infof("auction %s opened for request %s", auctionID, requestID)
	return auction, nil
}

// Offer appends a seller's bid to a pending auction. The delay bound is
// checked against the request's own reserve delay, not the auction snapshot.
func (l *Ledger) Offer(bidPrice, delay, auctionID, sellerID string) (*Auction, error) {
	price, err := ParseAmount("bidPrice", bidPrice)
	if err != nil {
		return nil, err
	}
	offeredDelay, err := ParseAmount("delay", delay)
	if err != nil {
		return nil, err
	}

	auction, request, err := l.auctionWithRequest(auctionID)
	if err != nil {
		return nil, err
	}

	if auction.State != Pending {
		logger.Warningf("offer from %s rejected: auction %s is %s", sellerID, auctionID, auction.State)
		return nil, newError(ErrInvalidState, "Auction is not PENDING")
	}
	if request.ReserveDelay.LessThan(offeredDelay.Decimal) {
		logger.Warningf("offer from %s rejected: delay %s exceeds reserve delay %s", sellerID, offeredDelay, request.ReserveDelay)
		return nil, newError(ErrConstraintViolation, "Delay is not less than reserve delay!")
	}

	auction.Offers = append(auction.Offers, Offer{BidPrice: price, SellerID: sellerID})
	if _, err := writeRecord(l.store, auctionID, auction); err != nil {
		return nil, err
	}
	logger.Infof("auction %s accepted offer %s from %s", auctionID, price, sellerID)
	return auction, nil
}

// CloseBidding settles a pending auction. Offers are stable-sorted by price
// descending and the last one wins, so among equally low bids the one
// submitted last takes the request. Without offers the auction ends as
// RESERVE_NOT_MET and the request is left as is.
func (l *Ledger) CloseBidding(auctionID string) (*Auction, error) {
	auction, request, err := l.auctionWithRequest(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.State != Pending {
		return nil, newError(ErrInvalidState, "Auction is not PENDING")
	}

	auction.State = ReserveNotMet
	if len(auction.Offers) > 0 {
		sort.SliceStable(auction.Offers, func(i, j int) bool {
			return auction.Offers[i].BidPrice.GreaterThan(auction.Offers[j].BidPrice.Decimal)
		})
		lowest := auction.Offers[len(auction.Offers)-1]

		request.WinnerID = lowest.SellerID
		if _, err := writeRecord(l.store, auction.RequestID, request); err != nil {
			return nil, err
		}
		auction.State = Finished
		logger.Infof("auction %s finished: %s wins request %s at %s", auctionID, lowest.SellerID, auction.RequestID, lowest.BidPrice)
	} else {
		logger.Infof("auction %s closed without offers", auctionID)
	}

	if _, err := writeRecord(l.store, auctionID, auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// GetState returns the record stored at key in compact JSON form.
func (l *Ledger) GetState(key string) ([]byte, error) {
	logger.Debugf("Getting key %s", key)
	data, err := l.store.GetState(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s from world state", key)
	}
	if len(data) == 0 {
		return nil, newError(ErrNotFound, "%s does not exist", key)
	}
	var out bytes.Buffer
	if err := json.Compact(&out, data); err != nil {
		return nil, newError(ErrParse, "failed to parse %s: %v", key, err)
	}
	return out.Bytes(), nil
}

// Request reads the request stored at requestID.
func (l *Ledger) Request(requestID string) (*Request, error) {
	request := new(Request)
	if err := readRecord(l.store, requestID, request, "request not found"); err != nil {
		return nil, err
	}
	return request, nil
}

// Auction reads the auction stored at auctionID.
func (l *Ledger) Auction(auctionID string) (*Auction, error) {
	auction := new(Auction)
	if err := readRecord(l.store, auctionID, auction, "auction not found"); err != nil {
		return nil, err
	}
	normalize(auction)
	return auction, nil
}

func (l *Ledger) auctionWithRequest(auctionID string) (*Auction, *Request, error) {
	auction, err := l.Auction(auctionID)
	if err != nil {
		return nil, nil, err
	}
	request, err := l.Request(auction.RequestID)
	if err != nil {
		return nil, nil, err
	}
	return auction, request, nil
}

// Auctions scans the whole key space and returns every auction record,
// skipping requests. A zero state returns auctions in any state.
func Auctions(store RangeStore, state State) ([]*Auction, error) {
	iterator, err := store.GetStateByRange("", "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan world state")
	}
	defer iterator.Close()

	auctions := []*Auction{}
	for iterator.HasNext() {
		kv, err := iterator.Next()
		if err != nil {
			return nil, errors.Wrap(err, "failed to iterate world state")
		}
		auction, err := decodeAuctionKV(kv)
		if err != nil {
			return nil, err
		}
		if auction == nil || (state != 0 && auction.State != state) {
			continue
		}
		auctions = append(auctions, auction)
	}
	return auctions, nil
}
