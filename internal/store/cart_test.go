package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

func TestSaveAndLoadCart(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	lines := []model.CartLine{
		{Name: "Vase", Price: 20, Quantity: 1},
		{Name: "Mug", Price: 9.5, Quantity: 2},
	}
	if err := SaveCart(ctx, database, lines); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}

	got, err := LoadCart(ctx, database)
	if err != nil {
		t.Fatalf("LoadCart: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("expected %v, got %v", lines, got)
	}

	// Saving replaces the whole list.
	if err := SaveCart(ctx, database, lines[1:]); err != nil {
		t.Fatalf("SaveCart: %v", err)
	}
	got, _ = LoadCart(ctx, database)
	if len(got) != 1 || got[0].Name != "Mug" {
		t.Errorf("expected only Mug, got %v", got)
	}
}

func TestSaveCartRejectsDuplicateNames(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	SaveCart(ctx, database, []model.CartLine{{Name: "Mug", Price: 1, Quantity: 1}})

	err := SaveCart(ctx, database, []model.CartLine{
		{Name: "Vase", Price: 1, Quantity: 1},
		{Name: "Vase", Price: 1, Quantity: 1},
	})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}

	// The failed save rolled back; the previous cart survives.
	got, _ := LoadCart(ctx, database)
	if len(got) != 1 || got[0].Name != "Mug" {
		t.Errorf("expected previous cart, got %v", got)
	}
}
