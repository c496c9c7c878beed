/*
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"github.com/edge-market/auction-chaincode/auction"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// TransactionContextInterface is the context every auction transaction receives.
type TransactionContextInterface interface {
	contractapi.TransactionContextInterface
	Ledger() *auction.Ledger
}

// TransactionContext binds the auction ledger to the transaction's stub.
type TransactionContext struct {
	contractapi.TransactionContext
}

// Ledger returns the auction operations over this transaction's world state.
func (tc *TransactionContext) Ledger() *auction.Ledger {
	return auction.New(tc.GetStub())
}
