package app

import (
	"github.com/3FinityAI/fogandleaf-sub000/internal/domain"
	"github.com/3FinityAI/fogandleaf-sub000/internal/storage/memory"
)

// seedDemoData наполняет in-memory хранилище небольшим каталогом чая,
// чтобы демо-режим работал без ручной подготовки данных.
func seedDemoData(store *memory.Store) {
	store.PutCustomer(domain.Customer{
		ID:    "demo-customer",
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Phone: "+919800000001",
	})

	for _, p := range []domain.Product{
		{
			ID:            "darjeeling-ftgfop",
			Name:          "Darjeeling FTGFOP First Flush",
			Category:      "black",
			PriceMinor:    84900,
			WeightGrams:   100,
			StockQuantity: 24,
		},
		{
			ID:            "nilgiri-green",
			Name:          "Nilgiri Green Needles",
			Category:      "green",
			PriceMinor:    62000,
			WeightGrams:   100,
			StockQuantity: 40,
		},
		{
			ID:            "kashmiri-kahwa",
			Name:          "Kashmiri Kahwa Blend",
			Category:      "blend",
			PriceMinor:    55000,
			WeightGrams:   150,
			StockQuantity: 12,
		},
		{
			ID:            "assam-ctc",
			Name:          "Assam CTC Strong",
			Category:      "black",
			PriceMinor:    32000,
			WeightGrams:   250,
			StockQuantity: 0,
		},
	} {
		store.PutProduct(p)
	}
}
