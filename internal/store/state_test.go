package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

func TestLoadStateEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	state, err := LoadState(context.Background(), database)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.Products == nil || state.HeroSlides == nil || state.InspirationItems == nil {
		t.Errorf("expected non-nil empty collections, got %+v", state)
	}
}

func TestSaveAndLoadState(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	want := model.State{
		Products: model.Catalog{
			"p1": {Name: "Mug", Price: 9.5, Images: []string{"https://x/a.png"}, Thumbnail: "https://x/a.png"},
		},
		HeroSlides:       []string{"https://x/hero.png"},
		InspirationItems: []model.GalleryItem{"https://x/g1.png", "data:image/jpeg;base64,AA"},
	}
	if err := SaveState(ctx, database, want); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	got, err := LoadState(ctx, database)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("state mismatch:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestLoadStateSkipsCorruptRows(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	database.ExecContext(ctx, `INSERT INTO admin_state (key, value) VALUES ('products', 'not json')`)
	database.ExecContext(ctx, `INSERT INTO admin_state (key, value) VALUES ('heroSlides', '["https://x/h.png"]')`)

	state, err := LoadState(ctx, database)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if len(state.Products) != 0 {
		t.Errorf("expected corrupt products to load empty, got %v", state.Products)
	}
	if len(state.HeroSlides) != 1 {
		t.Errorf("expected readable hero slides, got %v", state.HeroSlides)
	}
}
