package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/joki-boost/internal/domain/ladder"
	"github.com/xenking/joki-boost/internal/domain/order"
	"github.com/xenking/joki-boost/internal/storage/memory"
)

func TestReportCatalog(t *testing.T) {
	catalog := ladder.Default()
	assert.Equal(t, len(catalog.Defects()), reportCatalog(catalog))
	assert.Positive(t, reportCatalog(catalog))
}

func TestPlaceDemoOrders(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	require.NoError(t, placeDemoOrders(ctx, repo, ladder.Default()))

	recs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, len(demoOrders))

	byGame := map[string]order.Record{}
	for _, r := range recs {
		byGame[r.Game] = r
	}
	assert.EqualValues(t, 69000, byGame[ladder.MobileLegends].TotalPrice)
	assert.EqualValues(t, 54000, byGame[ladder.FreeFire].TotalPrice)
	assert.EqualValues(t, 30000, byGame[ladder.PUBGMobile].TotalPrice)
	assert.Equal(t, order.DefaultCustomerName, byGame[ladder.PUBGMobile].CustomerName)
}
