package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/factory/services/fulfillment/internal/model"
)

func TestAggregateModuleDemandSumsSharedModules(t *testing.T) {
	bom := new(MockBOMResolver)
	// two products sharing module 10
	bom.On("ExplodeProduct", mock.Anything, int64(1), 2).
		Return(map[int64]int{10: 4, 11: 2}, nil)
	bom.On("ExplodeProduct", mock.Anything, int64(2), 1).
		Return(map[int64]int{10: 1}, nil)

	svc := newTestService(nil, nil, bom, 10, t)

	demand, err := svc.aggregateModuleDemand(context.Background(), []demandLine{
		{ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 2},
		{ItemType: model.ItemTypeProduct, ItemID: 2, Quantity: 1},
		{ItemType: model.ItemTypeModule, ItemID: 10, Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, map[int64]int{10: 8, 11: 2}, demand)
	bom.AssertExpectations(t)
}

func TestAggregateModuleDemandSkipsFulfilledLines(t *testing.T) {
	bom := new(MockBOMResolver)
	svc := newTestService(nil, nil, bom, 10, t)

	demand, err := svc.aggregateModuleDemand(context.Background(), []demandLine{
		{ItemType: model.ItemTypeProduct, ItemID: 1, Quantity: 0},
		{ItemType: model.ItemTypeModule, ItemID: 10, Quantity: 5},
	})
	require.NoError(t, err)
	require.Equal(t, map[int64]int{10: 5}, demand)
	// the zero-quantity product line never hits the resolver
	bom.AssertNotCalled(t, "ExplodeProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregateModuleDemandRejectsPartLines(t *testing.T) {
	svc := newTestService(nil, nil, new(MockBOMResolver), 10, t)

	_, err := svc.aggregateModuleDemand(context.Background(), []demandLine{
		{ItemType: model.ItemTypePart, ItemID: 99, Quantity: 1},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestAggregateModuleDemandRejectsEmptyBOM(t *testing.T) {
	bom := new(MockBOMResolver)
	bom.On("ExplodeProduct", mock.Anything, int64(7), 1).
		Return(map[int64]int{}, nil)

	svc := newTestService(nil, nil, bom, 10, t)

	_, err := svc.aggregateModuleDemand(context.Background(), []demandLine{
		{ItemType: model.ItemTypeProduct, ItemID: 7, Quantity: 1},
	})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Violations[0], "no bill of materials")
}

func TestAggregatePartDemand(t *testing.T) {
	bom := new(MockBOMResolver)
	bom.On("ExplodeModule", mock.Anything, int64(10), 4).
		Return(map[int64]int{101: 8, 102: 4}, nil)

	svc := newTestService(nil, nil, bom, 10, t)

	parts, err := svc.aggregatePartDemand(context.Background(), 10, 4)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{101: 8, 102: 4}, parts)
}

func TestSortedItemIDs(t *testing.T) {
	ids := sortedItemIDs(map[int64]int{30: 1, 10: 2, 20: 3})
	require.Equal(t, []int64{10, 20, 30}, ids)
}
