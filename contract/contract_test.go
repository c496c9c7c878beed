/*
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"encoding/json"
	"testing"

	"github.com/edge-market/auction-chaincode/auction"
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/suite"
)

const conditions = `{"storage":3,"processor":"5","transmission bandwidth":"700","networking":"45"}`

type AuctionContractSuite struct {
	suite.Suite
	stub *shimtest.MockStub
}

func TestAuctionContract(t *testing.T) {
	suite.Run(t, new(AuctionContractSuite))
}

func (s *AuctionContractSuite) SetupTest() {
	cc, err := NewChaincode()
	s.Require().NoError(err, "error should be nil")

	s.stub = shimtest.NewMockStub("TestStub", cc)
	s.Require().NotNil(s.stub, "Stub is nil, TestStub creation failed")
}

func (s *AuctionContractSuite) invoke(fn string, args ...string) peer.Response {
	argv := [][]byte{[]byte(fn)}
	for _, arg := range args {
		argv = append(argv, []byte(arg))
	}
	return s.stub.MockInvoke(uuid.New().String(), argv)
}

func (s *AuctionContractSuite) mustInvoke(fn string, args ...string) []byte {
	resp := s.invoke(fn, args...)
	s.Require().EqualValues(shim.OK, resp.GetStatus(), resp.GetMessage())
	return resp.GetPayload()
}

func (s *AuctionContractSuite) mustFail(message string, fn string, args ...string) {
	resp := s.invoke(fn, args...)
	s.Require().EqualValues(shim.ERROR, resp.GetStatus(), "expected %s to fail", fn)
	s.Equal(message, resp.GetMessage())
}

func (s *AuctionContractSuite) auction(key string) *auction.Auction {
	a := new(auction.Auction)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("GetState", key), a))
	return a
}

func (s *AuctionContractSuite) request(key string) *auction.Request {
	r := new(auction.Request)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("GetState", key), r))
	return r
}

// drainEvents returns every event set since the last call, oldest first.
func (s *AuctionContractSuite) drainEvents() []*peer.ChaincodeEvent {
	var events []*peer.ChaincodeEvent
	for {
		select {
		case ev := <-s.stub.ChaincodeEventsChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (s *AuctionContractSuite) TestScenario() {
	added := s.mustInvoke("AddRequest", "004", "Org1MSP", "600", conditions)
	s.Equal(string(added), string(s.mustInvoke("GetState", "004")))
	s.Equal(auction.NotDecided, s.request("004").WinnerID)

	s.mustInvoke("StartBidding", "Auction004", "004")
	s.Equal(auction.Pending, s.auction("Auction004").State)

	s.mustInvoke("Offer", "200", "500", "Auction004", "Org2MSP")
	s.mustFail("Delay is not less than reserve delay!", "Offer", "300", "800", "Auction004", "Org3MSP")
	s.Len(s.auction("Auction004").Offers, 1)
	s.mustInvoke("Offer", "150", "300", "Auction004", "Org3MSP")

	closed := new(auction.Auction)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("CloseBidding", "Auction004"), closed))
	s.Equal(auction.Finished, closed.State)
	winner, ok := closed.Winner()
	s.Require().True(ok)
	s.Equal("Org3MSP", winner.SellerID)
	s.Equal("150", winner.BidPrice.String())

	s.Equal("Org3MSP", s.request("004").WinnerID)
	s.Equal(auction.Finished, s.auction("Auction004").State)

	s.mustFail("Auction is not PENDING", "Offer", "100", "100", "Auction004", "Org2MSP")
	s.mustFail("Auction is not PENDING", "CloseBidding", "Auction004")
	s.Len(s.auction("Auction004").Offers, 2)
}

func (s *AuctionContractSuite) TestStartBiddingWithoutRequest() {
	s.mustFail("request not found", "StartBidding", "Auction001", "001")
	s.NotContains(s.stub.State, "Auction001")
}

func (s *AuctionContractSuite) TestOfferWithoutAuction() {
	s.mustFail("auction not found", "Offer", "200", "500", "Auction001", "Org2MSP")
}

func (s *AuctionContractSuite) TestCloseWithoutOffers() {
	s.mustInvoke("AddRequest", "001", "Org1MSP", "100", "")
	s.mustInvoke("StartBidding", "Auction001", "001")

	closed := new(auction.Auction)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("CloseBidding", "Auction001"), closed))
	s.Equal(auction.ReserveNotMet, closed.State)
	s.Equal(auction.NotDecided, s.request("001").WinnerID)
}

func (s *AuctionContractSuite) TestMalformedNumbers() {
	s.mustFail(`reserveDelay must be numeric, got "soon"`, "AddRequest", "001", "Org1MSP", "soon", "")
	s.NotContains(s.stub.State, "001")
}

func (s *AuctionContractSuite) TestGetState() {
	s.mustFail("nothing does not exist", "GetState", "nothing")

	s.stub.MockTransactionStart("seed")
	s.Require().NoError(s.stub.PutState("garbage", []byte("not json")))
	s.stub.MockTransactionEnd("seed")
	resp := s.invoke("GetState", "garbage")
	s.EqualValues(shim.ERROR, resp.GetStatus())
	s.Contains(resp.GetMessage(), "failed to parse garbage")

	s.mustInvoke("AddRequest", "001", "Org1MSP", "100", "")
	first := s.mustInvoke("GetState", "001")
	second := s.mustInvoke(ContractName+":GetState", "001")
	s.Equal(first, second)
}

func (s *AuctionContractSuite) TestReadRequestAndAuction() {
	s.mustInvoke("AddRequest", "001", "Org1MSP", "100", "gpu")
	s.mustInvoke("StartBidding", "Auction001", "001")

	r := new(auction.Request)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("ReadRequest", "001"), r))
	s.Equal("gpu", r.Conditions)

	a := new(auction.Auction)
	s.Require().NoError(json.Unmarshal(s.mustInvoke("ReadAuction", "Auction001"), a))
	s.Equal("001", a.RequestID)

	s.mustFail("auction not found", "ReadAuction", "001x")
}

func (s *AuctionContractSuite) TestQueryAuctions() {
	s.mustInvoke("AddRequest", "001", "Org1MSP", "100", "")
	s.mustInvoke("AddRequest", "002", "Org1MSP", "100", "")
	s.mustInvoke("StartBidding", "Auction001", "001")
	s.mustInvoke("StartBidding", "Auction002", "002")
	s.mustInvoke("Offer", "10", "10", "Auction002", "Org2MSP")
	s.mustInvoke("CloseBidding", "Auction002")

	var all []*auction.Auction
	s.Require().NoError(json.Unmarshal(s.mustInvoke("QueryAuctions", ""), &all))
	s.Len(all, 2)

	var finished []*auction.Auction
	s.Require().NoError(json.Unmarshal(s.mustInvoke("QueryAuctions", "FINISHED"), &finished))
	s.Require().Len(finished, 1)
	s.Equal("Auction002", finished[0].AuctionID)

	resp := s.invoke("QueryAuctions", "OPEN")
	s.EqualValues(shim.ERROR, resp.GetStatus())
}

func (s *AuctionContractSuite) TestEvents() {
	s.mustInvoke("AddRequest", "001", "Org1MSP", "100", "")
	s.Empty(s.drainEvents())

	s.mustInvoke("StartBidding", "Auction001", "001")
	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(EventBiddingStarted, events[0].EventName)

	s.mustInvoke("Offer", "75", "50", "Auction001", "Org2MSP")
	events = s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(EventOfferAccepted, events[0].EventName)
	offered := new(AuctionEvent)
	s.Require().NoError(json.Unmarshal(events[0].Payload, offered))
	s.Equal("Org2MSP", offered.SellerID)
	s.Equal("PENDING", offered.State)

	s.mustFail("Delay is not less than reserve delay!", "Offer", "70", "500", "Auction001", "Org3MSP")
	s.Empty(s.drainEvents())

	s.mustInvoke("CloseBidding", "Auction001")
	events = s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(EventBiddingClosed, events[0].EventName)
	closed := new(AuctionEvent)
	s.Require().NoError(json.Unmarshal(events[0].Payload, closed))
	s.Equal("Auction001", closed.AuctionID)
	s.Equal("001", closed.RequestID)
	s.Equal("FINISHED", closed.State)
	s.Equal("Org2MSP", closed.SellerID)
	s.Require().NotNil(closed.BidPrice)
	s.Equal("75", closed.BidPrice.String())
	s.NotEmpty(closed.TxID)
}

func (s *AuctionContractSuite) TestUnknownFunction() {
	s.mustFail("Received unknown function invocation Bogus", "Bogus")
}
