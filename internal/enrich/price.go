package enrich

import (
	"math/rand"
	"sync"
	"time"
)

const (
	MinMockPrice = 500
	MaxMockPrice = 3000
)

var defaultMockPrices = map[string]float64{
	"Hotel A": 1200,
	"Hotel B": 1500,
	"Hotel C": 2000,
	"Hotel D": 1800,
	"Hotel E": 2500,
}

// MockPriceOracle serves prices from a fixed table and draws a random whole
// price in [MinMockPrice, MaxMockPrice] for any other hotel.
type MockPriceOracle struct {
	prices map[string]float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockPriceOracle(rng *rand.Rand) *MockPriceOracle {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MockPriceOracle{prices: defaultMockPrices, rng: rng}
}

func (o *MockPriceOracle) Price(hotelName string) float64 {
	if p, ok := o.prices[hotelName]; ok {
		return p
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return float64(MinMockPrice + o.rng.Intn(MaxMockPrice-MinMockPrice+1))
}
