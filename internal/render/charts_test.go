package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/epidash-backend-go/internal/models"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func f(v float64) *float64 { return &v }

func TestFatalityTrend(t *testing.T) {
	img, err := FatalityTrend([]models.TrendPoint{
		{Year: 2020, FatalityRate: f(2.5)},
		{Year: 2021, FatalityRate: nil},
		{Year: 2022, FatalityRate: f(1.1)},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = FatalityTrend([]models.TrendPoint{{Year: 2020, FatalityRate: f(10)}})
	require.NoError(t, err, "a single year still renders")
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = FatalityTrend([]models.TrendPoint{
		{Year: 2019, FatalityRate: nil},
		{Year: 2020, FatalityRate: f(0)},
	})
	require.NoError(t, err, "one defined rate among undefined years still renders")
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = FatalityTrend([]models.TrendPoint{{Year: 2020}})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestBars(t *testing.T) {
	img, err := Bars("Nipah Virus Cases", []models.Bar{
		{Label: "2018", Year: 2018, Value: 19},
		{Label: "2019", Year: 2019, Value: 5},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = Bars("empty", nil)
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestDistribution(t *testing.T) {
	img, err := Distribution([]models.Slice{
		{Label: "Recovered / Active", Value: 75, Percent: f(75)},
		{Label: "Deaths", Value: 25, Percent: f(25)},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = Distribution([]models.Slice{{Label: "Deaths", Value: 0}})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestUpperBound(t *testing.T) {
	assert.Equal(t, 1.0, upperBound(nil))
	assert.Equal(t, 1.0, upperBound([]float64{0, 0}))
	assert.InDelta(t, 11.0, upperBound([]float64{3, 10}), 1e-9)
}
