/*
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"github.com/edge-market/auction-chaincode/config"
	"github.com/edge-market/auction-chaincode/contract"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("auction_cc")

func main() {
	// See chaincode.env.example
	cfg, err := config.Load(".")
	if err != nil {
		logger.Panicf("cannot load config: %s", err)
	}
	flogging.ActivateSpec(cfg.LogLevel)

	chaincode, err := contract.NewChaincode()
	if err != nil {
		logger.Panicf("Error creating auction chaincode: %s", err)
	}

	if !cfg.ExternalService() {
		if err := chaincode.Start(); err != nil {
			logger.Panicf("Error starting auction chaincode: %s", err)
		}
		return
	}

	tlsProps, err := cfg.TLSProperties()
	if err != nil {
		logger.Panicf("error while reading the crypto files: %s", err)
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.Address,
		CC:       chaincode,
		TLSProps: tlsProps,
	}
	logger.Infof("auction chaincode %s listening on %s", cfg.CCID, cfg.Address)
	if err := server.Start(); err != nil {
		logger.Panicf("Error starting auction chaincode server: %s", err)
	}
}
