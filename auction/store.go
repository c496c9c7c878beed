/*
SPDX-License-Identifier: Apache-2.0
*/

package auction

import (
	"encoding/json"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/pkg/errors"
)

// Store is the world state seen by a single transaction. A missing key reads
// as nil with no error. shim.ChaincodeStubInterface satisfies it.
type Store interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// RangeStore is a Store that can also scan keys in lexical order.
type RangeStore interface {
	Store
	GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error)
}

func readRecord(store Store, key string, v interface{}, missing string) error {
	logger.Debugf("Getting key %s", key)
	data, err := store.GetState(key)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s from world state", key)
	}
	if len(data) == 0 {
		return newError(ErrNotFound, "%s", missing)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newError(ErrParse, "failed to parse %s: %v", key, err)
	}
	return nil
}

func writeRecord(store Store, key string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s", key)
	}
	logger.Debugf("Putting key %s, Value: %s", key, data)
	if err := store.PutState(key, data); err != nil {
		return nil, errors.Wrapf(err, "failed to put %s to world state", key)
	}
	return data, nil
}

// recordKind tells auctions and requests apart when both share one key space.
type recordKind struct {
	AuctionID *string `json:"auctionId"`
}

// decodeAuctionKV returns the auction stored in kv, or nil if kv holds some
// other record.
func decodeAuctionKV(kv *queryresult.KV) (*Auction, error) {
	var kind recordKind
	if err := json.Unmarshal(kv.Value, &kind); err != nil {
		return nil, newError(ErrParse, "failed to parse %s: %v", kv.Key, err)
	}
	if kind.AuctionID == nil {
		return nil, nil
	}
	a := new(Auction)
	if err := json.Unmarshal(kv.Value, a); err != nil {
		return nil, newError(ErrParse, "failed to parse %s: %v", kv.Key, err)
	}
	normalize(a)
	return a, nil
}

func normalize(a *Auction) {
	if a.Offers == nil {
		a.Offers = []Offer{}
	}
}
