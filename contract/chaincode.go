/*
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"
	"github.com/pkg/errors"
)

// Version is reported in the contract and chaincode metadata.
const Version = "1.0.0"

// NewChaincode builds the auction chaincode with its transaction context and
// hooks wired in.
func NewChaincode() (*contractapi.ContractChaincode, error) {
	auctionContract := new(AuctionContract)
	auctionContract.Name = ContractName
	auctionContract.Info = metadata.InfoMetadata{
		Title:       ContractName,
		Description: "Reverse auction for service requests: lowest offer within the reserve delay wins",
		Version:     Version,
		License:     &metadata.LicenseMetadata{Name: "Apache-2.0"},
	}
	auctionContract.TransactionContextHandler = new(TransactionContext)
	auctionContract.BeforeTransaction = beforeTransaction
	auctionContract.UnknownTransaction = unknownTransaction

	chaincode, err := contractapi.NewChaincode(auctionContract)
	if err != nil {
		return nil, errors.Wrap(err, "error creating auction chaincode")
	}
	chaincode.Info.Title = "auction chaincode"
	chaincode.Info.Version = Version
	return chaincode, nil
}
