package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/crypto_bookkeeper/internal/apperrors"
	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PriceServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	oracle  *MockPriceOracle
	service portssvc.PriceSvcFacade
}

func (suite *PriceServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.oracle = new(MockPriceOracle)
	suite.service = services.NewPriceService(suite.oracle, time.Minute)
}

func (suite *PriceServiceTestSuite) TestGetPrices_CachesHits() {
	suite.oracle.On("FetchUSDPrices", suite.ctx, []string{"BTC", "ETH"}).
		Return(map[string]decimal.Decimal{"BTC": dec("60000"), "ETH": dec("3000")}, nil).Once()

	prices, err := suite.service.GetPrices(suite.ctx, []string{"eth", "BTC", "btc", ""})
	suite.Require().NoError(err)
	suite.True(dec("60000").Equal(prices["BTC"]))
	suite.True(dec("3000").Equal(prices["ETH"]))

	again, err := suite.service.GetPrices(suite.ctx, []string{"BTC"})
	suite.Require().NoError(err)
	suite.True(dec("60000").Equal(again["BTC"]))

	suite.oracle.AssertExpectations(suite.T())
}

func (suite *PriceServiceTestSuite) TestGetPrices_OmitsUnknown() {
	suite.oracle.On("FetchUSDPrices", suite.ctx, []string{"NOPE"}).Return(map[string]decimal.Decimal{}, nil).Once()

	prices, err := suite.service.GetPrices(suite.ctx, []string{"nope"})
	suite.Require().NoError(err)
	suite.Empty(prices)
}

func (suite *PriceServiceTestSuite) TestGetPrices_UpstreamError() {
	suite.oracle.On("FetchUSDPrices", suite.ctx, []string{"BTC"}).Return(nil, assert.AnError).Once()

	prices, err := suite.service.GetPrices(suite.ctx, []string{"BTC"})
	suite.Nil(prices)
	suite.ErrorIs(err, apperrors.ErrUpstream)
	suite.ErrorIs(err, assert.AnError)
}

func TestPriceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PriceServiceTestSuite))
}
