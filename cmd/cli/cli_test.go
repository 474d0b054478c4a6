package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeradar/radar-service/internal/catalog"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/recommend"
)

func ptr[T any](v T) *T { return &v }

func testSource() *catalog.Static {
	return catalog.NewStatic(catalog.Dataset{
		Stores: []recommend.Store{
			{StoreID: "a", Name: "Mart A", X: ptr(37.5665), Y: ptr(126.9780), AreaCode: "11000"},
			{StoreID: "b", Name: "Mart B", X: ptr(37.5800), Y: ptr(126.9780), AreaCode: "11000"},
			{StoreID: "c", Name: "Mart C", X: ptr(35.1796), Y: ptr(129.0756), AreaCode: "26000"},
		},
		Prices: map[string][]recommend.PricePoint{
			"milk": {
				{StoreID: "a", Price: 3000},
				{StoreID: "b", Price: 2000},
				{StoreID: "c", Price: 1000},
			},
		},
	})
}

func baseOptions() rankOptions {
	return rankOptions{
		Product:   "milk",
		Position:  recommend.UserPosition{Lat: 37.5665, Lng: 126.9780},
		Selection: recommend.NewFilterSelection(),
		Pref:      recommend.DefaultPreference(),
		Ranking:   recommend.DefaultConfig(),
	}
}

func TestRankStores(t *testing.T) {
	res, err := rankStores(context.Background(), testSource(), baseOptions())
	require.NoError(t, err)

	assert.Equal(t, recommend.FilterNone, res.Filter)
	require.Len(t, res.Stores, 3)
	assert.Equal(t, 0, res.Stores[0].Rank)
	assert.Equal(t, recommend.TierTop, res.Stores[0].Tier)
}

func TestRankStores_Filters(t *testing.T) {
	opts := baseOptions()
	opts.Selection.SetDistance(5)
	res, err := rankStores(context.Background(), testSource(), opts)
	require.NoError(t, err)
	assert.Equal(t, recommend.FilterDistance, res.Filter)
	require.NotNil(t, res.Overlay)
	assert.Len(t, res.Stores, 2)

	opts = baseOptions()
	opts.Selection.SetRegion("26000")
	res, err = rankStores(context.Background(), testSource(), opts)
	require.NoError(t, err)
	assert.Equal(t, recommend.FilterRegion, res.Filter)
	require.Len(t, res.Stores, 1)
	assert.Equal(t, "c", res.Stores[0].StoreID)

	opts = baseOptions()
	opts.Product = "bread"
	res, err = rankStores(context.Background(), testSource(), opts)
	require.NoError(t, err)
	assert.Empty(t, res.Stores)
}

func TestWriteRankTable(t *testing.T) {
	res, err := rankStores(context.Background(), testSource(), baseOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeRankTable(&buf, res, markers.DefaultFormatter()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "RANK")
	assert.Contains(t, lines[1], "top")
	assert.Contains(t, buf.String(), "₩1,000")

	buf.Reset()
	require.NoError(t, writeRankTable(&buf, &rankResult{Product: "bread"}, markers.DefaultFormatter()))
	assert.Contains(t, buf.String(), `No priced stores found for "bread"`)
}

func TestRunDistance(t *testing.T) {
	var out bytes.Buffer
	distanceCmd.SetOut(&out)
	require.NoError(t, runDistance(distanceCmd, []string{"37.5665", "126.9780", "37.5665", "126.9780"}))
	assert.Equal(t, "0.000 km\n", out.String())

	assert.Error(t, runDistance(distanceCmd, []string{"91", "0", "0", "0"}))
	assert.Error(t, runDistance(distanceCmd, []string{"x", "0", "0", "0"}))
}
