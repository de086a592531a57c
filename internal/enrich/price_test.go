package enrich

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockPriceOracle_Table(t *testing.T) {
	o := NewMockPriceOracle(rand.New(rand.NewSource(1)))
	assert.Equal(t, 1200.0, o.Price("Hotel A"))
	assert.Equal(t, 2500.0, o.Price("Hotel E"))
}

func TestMockPriceOracle_RandomFallbackInRange(t *testing.T) {
	o := NewMockPriceOracle(rand.New(rand.NewSource(42)))
	for i := 0; i < 1000; i++ {
		p := o.Price("Seaside Inn")
		assert.GreaterOrEqual(t, p, float64(MinMockPrice))
		assert.LessOrEqual(t, p, float64(MaxMockPrice))
		assert.Equal(t, float64(int(p)), p, "price should be a whole number")
	}
}
