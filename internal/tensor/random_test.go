package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomNormalMoments(t *testing.T) {
	x, err := RandomNormal[float64](Shape{100, 50}, WithSeed(1))
	require.NoError(t, err)
	require.Equal(t, Shape{100, 50}, x.Shape())

	data := x.RawData()

	var sum float64
	for _, v := range data {
		sum += v
	}

	mean := sum / float64(len(data))

	var sumSq float64

	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}

	std := math.Sqrt(sumSq / float64(len(data)))

	assert.InDelta(t, 0, mean, 0.1)
	assert.InDelta(t, 1, std, 0.1)
}

func TestRandomNormalSeedIsReproducible(t *testing.T) {
	a, err := RandomNormal[float32](Shape{4, 4}, WithSeed(42))
	require.NoError(t, err)

	b, err := RandomNormal[float32](Shape{4, 4}, WithSeed(42))
	require.NoError(t, err)

	c, err := RandomNormal[float32](Shape{4, 4}, WithSeed(43))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestRandomNormalUnseededCallsDiverge(t *testing.T) {
	a, err := RandomNormal[float64](Shape{64})
	require.NoError(t, err)

	b, err := RandomNormal[float64](Shape{64})
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
}

func TestRandomNormalIntegerRounding(t *testing.T) {
	shape := Shape{256}

	draws, err := RandomNormal[float64](shape, WithSeed(7))
	require.NoError(t, err)

	trunc, err := RandomNormal[int](shape, WithSeed(7))
	require.NoError(t, err)

	nearest, err := RandomNormal[int](shape, WithSeed(7), WithRounding(RoundNearest))
	require.NoError(t, err)

	for i, v := range draws.RawData() {
		assert.Equal(t, int(math.Trunc(v)), trunc.RawData()[i], "truncate draw %v", v)
		assert.Equal(t, int(math.Round(v)), nearest.RawData()[i], "nearest draw %v", v)
	}
}

func TestRandomNormalFloatIgnoresRounding(t *testing.T) {
	a, _ := RandomNormal[float64](Shape{8}, WithSeed(3))
	b, _ := RandomNormal[float64](Shape{8}, WithSeed(3), WithRounding(RoundNearest))

	assert.True(t, a.Equal(b))
}

func TestRandomNormalInvalidShape(t *testing.T) {
	_, err := RandomNormal[float64](Shape{0})
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestRoundingString(t *testing.T) {
	assert.Equal(t, "truncate", RoundTruncate.String())
	assert.Equal(t, "nearest", RoundNearest.String())
}

func TestIsIntegral(t *testing.T) {
	assert.True(t, IsIntegral[int]())
	assert.True(t, IsIntegral[int8]())
	assert.True(t, IsIntegral[int64]())
	assert.False(t, IsIntegral[float32]())
	assert.False(t, IsIntegral[float64]())
}
