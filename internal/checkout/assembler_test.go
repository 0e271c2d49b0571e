package checkout

import (
	"encoding/json"
	"testing"

	"github.com/eyeweardurga-sys/durgaeyewear-frontend/internal/models"

	"github.com/google/go-cmp/cmp"
)

var moneyComparer = cmp.Comparer(func(a, b models.Money) bool { return a.Equal(b) })

func testAddress() models.Address {
	return models.Address{
		Name:    "Asha Rao",
		Phone:   "9876543210",
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Zip:     "560001",
		Country: "India",
	}
}

func TestBuildOrderPayload(t *testing.T) {
	lines := []models.CartLine{
		{ProductID: "A", Name: "Aviator", Image: "/a.jpg", UnitPrice: models.NewMoneyFromInt(2000), Quantity: 2},
		{
			ProductID: "B", Name: "Round", Image: "/b.jpg", UnitPrice: models.NewMoneyFromInt(1800), Quantity: 1,
			SelectedLens: &models.SelectedLens{LensType: "Blue Light Filter", AdditionalPrice: models.NewMoneyFromInt(800)},
		},
	}
	code := "SAVE500"
	got := BuildOrderPayload(
		lines,
		models.NewMoneyFromInt(5800),
		models.NewMoneyFromInt(500),
		models.NewMoneyFromInt(5300),
		" SAVE500 ",
		testAddress(),
		&models.Prescription{PrescriptionImage: "/uploads/rx.png", Message: "-1.25 both"},
	)

	want := models.OrderSubmission{
		Items: []models.OrderLineItem{
			{ProductID: "A", Name: "Aviator", Image: "/a.jpg", Price: models.NewMoneyFromInt(2000), Quantity: 2},
			{
				ProductID: "B", Name: "Round", Image: "/b.jpg", Price: models.NewMoneyFromInt(1800), Quantity: 1,
				SelectedLens: &models.SelectedLens{LensType: "Blue Light Filter", AdditionalPrice: models.NewMoneyFromInt(800)},
			},
		},
		Subtotal:     models.NewMoneyFromInt(5800),
		Discount:     models.NewMoneyFromInt(500),
		Total:        models.NewMoneyFromInt(5300),
		CouponCode:   &code,
		Address:      testAddress(),
		Prescription: &models.Prescription{PrescriptionImage: "/uploads/rx.png", Message: "-1.25 both"},
	}
	if diff := cmp.Diff(want, got, moneyComparer); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	lines[1].SelectedLens.LensType = "mutated"
	if got.Items[1].SelectedLens.LensType != "Blue Light Filter" {
		t.Fatalf("payload should not share lens pointer with cart lines")
	}
}

func TestBuildOrderPayloadOmitsEmptyOptionalFields(t *testing.T) {
	got := BuildOrderPayload(nil, models.Money{}, models.Money{}, models.Money{}, "", testAddress(), &models.Prescription{})
	if got.CouponCode != nil {
		t.Fatalf("coupon code want nil got %v", *got.CouponCode)
	}
	if got.Prescription != nil {
		t.Fatalf("prescription want nil for empty input")
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Fatalf("items want empty slice got %#v", got.Items)
	}

	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal payload failed: %v", err)
	}
	if v, ok := decoded["couponCode"]; !ok || v != nil {
		t.Fatalf("couponCode want explicit null got %v (present=%v)", v, ok)
	}
	if _, ok := decoded["prescription"]; ok {
		t.Fatalf("prescription should be omitted")
	}
}

func TestOrderTotalClampsAtZero(t *testing.T) {
	cases := []struct {
		subtotal int64
		discount int64
		want     int64
	}{
		{4000, 500, 3500},
		{300, 500, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		got := OrderTotal(models.NewMoneyFromInt(tc.subtotal), models.NewMoneyFromInt(tc.discount))
		if !got.Equal(models.NewMoneyFromInt(tc.want)) {
			t.Fatalf("OrderTotal(%d, %d) want %d got %s", tc.subtotal, tc.discount, tc.want, got)
		}
	}
}
