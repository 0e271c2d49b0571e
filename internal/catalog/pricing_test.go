package catalog

import (
	"testing"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/config"
	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"
)

func moneyPtr(v int64) *models.Money {
	m := models.NewMoneyFromInt(v)
	return &m
}

func TestDefaultLensMenu(t *testing.T) {
	menu := DefaultLensMenu()
	if len(menu.Options()) != 5 {
		t.Fatalf("default menu want 5 options got %d", len(menu.Options()))
	}
	option, ok := menu.Find("blue light filter")
	if !ok {
		t.Fatalf("lookup should ignore case")
	}
	if !option.AdditionalPrice.Equal(models.NewMoneyFromInt(800)) {
		t.Fatalf("blue light price want 800 got %s", option.AdditionalPrice)
	}
}

func TestNewLensMenuFromConfig(t *testing.T) {
	menu := NewLensMenu([]config.LensMenuItem{
		{LensType: " Clear ", AdditionalPrice: 0},
		{LensType: "", AdditionalPrice: 99},
		{LensType: "Tinted", AdditionalPrice: 650, Description: "  Grey tint "},
	})
	options := menu.Options()
	if len(options) != 2 {
		t.Fatalf("menu want 2 options got %d", len(options))
	}
	if options[0].LensType != "Clear" || options[1].Description != "Grey tint" {
		t.Fatalf("menu values should be trimmed: %+v", options)
	}
	if _, ok := menu.Find("Anti-Glare Lens"); ok {
		t.Fatalf("configured menu should replace defaults")
	}
}

func TestResolveLensPrefersProductOptions(t *testing.T) {
	menu := DefaultLensMenu()
	product := &models.Product{
		ID:    "p1",
		Price: models.NewMoneyFromInt(1000),
		LensOptions: []models.LensOption{
			{LensType: "Blue Light Filter", AdditionalPrice: models.NewMoneyFromInt(650)},
		},
	}

	option, err := menu.ResolveLens(product, "Blue Light Filter")
	if err != nil {
		t.Fatalf("resolve lens failed: %v", err)
	}
	if !option.AdditionalPrice.Equal(models.NewMoneyFromInt(650)) {
		t.Fatalf("product option should win, got %s", option.AdditionalPrice)
	}

	option, err = menu.ResolveLens(product, "Polarized Lens")
	if err != nil || !option.AdditionalPrice.Equal(models.NewMoneyFromInt(1200)) {
		t.Fatalf("menu fallback failed: %v %s", err, option.AdditionalPrice)
	}

	if _, err := menu.ResolveLens(product, "Night Vision"); err != ErrLensNotFound {
		t.Fatalf("unknown lens want ErrLensNotFound got %v", err)
	}
	if _, err := menu.ResolveLens(product, ""); err != ErrLensNotFound {
		t.Fatalf("empty lens want ErrLensNotFound got %v", err)
	}
}

func TestFinalPriceUsesDiscountPrice(t *testing.T) {
	product := &models.Product{Price: models.NewMoneyFromInt(2500), DiscountPrice: moneyPtr(2000)}
	lens := &models.SelectedLens{LensType: "Anti-Glare Lens", AdditionalPrice: models.NewMoneyFromInt(500)}

	if got := FinalPrice(product, lens); !got.Equal(models.NewMoneyFromInt(2500)) {
		t.Fatalf("final price want 2500 got %s", got)
	}
	if got := FinalPrice(product, nil); !got.Equal(models.NewMoneyFromInt(2000)) {
		t.Fatalf("final price without lens want 2000 got %s", got)
	}

	product.DiscountPrice = moneyPtr(0)
	if got := ProductBasePrice(product); !got.Equal(models.NewMoneyFromInt(2500)) {
		t.Fatalf("zero discount price should be ignored, got %s", got)
	}
}

func TestRepriceLine(t *testing.T) {
	line := models.CartLine{
		ProductID:    "B",
		UnitPrice:    models.NewMoneyFromInt(1800),
		SelectedLens: &models.SelectedLens{LensType: "Blue Light Filter", AdditionalPrice: models.NewMoneyFromInt(800)},
	}
	if got := BasePrice(line); !got.Equal(models.NewMoneyFromInt(1000)) {
		t.Fatalf("base price want 1000 got %s", got)
	}
	photochromic := &models.SelectedLens{LensType: "Photochromic Lens", AdditionalPrice: models.NewMoneyFromInt(1500)}
	if got := RepriceLine(line, photochromic); !got.Equal(models.NewMoneyFromInt(2500)) {
		t.Fatalf("repriced want 2500 got %s", got)
	}
	if got := RepriceLine(line, nil); !got.Equal(models.NewMoneyFromInt(1000)) {
		t.Fatalf("repriced without lens want 1000 got %s", got)
	}
}

func TestDiscountPercent(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		discount *models.Money
		want     int
	}{
		{"none", 1000, nil, 0},
		{"quarter", 2000, moneyPtr(1500), 25},
		{"rounded", 3000, moneyPtr(1999), 33},
		{"higher", 1000, moneyPtr(1200), 0},
		{"free price", 0, moneyPtr(0), 0},
	}
	for _, tc := range cases {
		product := &models.Product{Price: models.NewMoneyFromInt(tc.price), DiscountPrice: tc.discount}
		if got := DiscountPercent(product); got != tc.want {
			t.Fatalf("%s: want %d got %d", tc.name, tc.want, got)
		}
	}
}

func TestFilterProducts(t *testing.T) {
	products := []models.Product{
		{ID: "1", Category: "Sun Glasses", Gender: "Men", Price: models.NewMoneyFromInt(1500)},
		{ID: "2", Category: "eyeglasses", Gender: "Women", Price: models.NewMoneyFromInt(900)},
		{ID: "3", Category: "sun-glasses", Gender: "Women", Price: models.NewMoneyFromInt(4000), DiscountPrice: moneyPtr(2500)},
		{ID: "4", Category: "sun_glasses", FrameShape: "Round", Price: models.NewMoneyFromInt(800)},
	}

	got := FilterProducts(products, models.ProductFilter{Category: "sun-glasses"})
	if len(got) != 3 {
		t.Fatalf("category filter want 3 got %d", len(got))
	}

	got = FilterProducts(products, models.ProductFilter{Category: "Sun Glasses", MinPrice: 1000, MaxPrice: 3000})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("price filter mismatch: %+v", got)
	}

	got = FilterProducts(products, models.ProductFilter{Gender: "women", FrameShape: ""})
	if len(got) != 2 {
		t.Fatalf("gender filter want 2 got %d", len(got))
	}

	got = FilterProducts(products, models.ProductFilter{FrameShape: "round"})
	if len(got) != 1 || got[0].ID != "4" {
		t.Fatalf("frame shape filter mismatch: %+v", got)
	}
}
