package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundTrip(t *testing.T) {
	cases := []string{"0.00", "0.01", "1.00", "99.99", "100.00", "130.00", "12345.67", "-5.00", "-0.01"}
	for _, raw := range cases {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		back := FromCents(ToCents(d))
		if !back.Equal(d) {
			t.Fatalf("round trip %s: got %s", raw, back.String())
		}
	}
}

func TestToCentsRoundsToNearestCent(t *testing.T) {
	d := decimal.NewFromFloat(10.005)
	if got := ToCents(d); got != 1001 {
		t.Fatalf("expected 1001 cents, got %d", got)
	}
	d = decimal.NewFromFloat(10.004)
	if got := ToCents(d); got != 1000 {
		t.Fatalf("expected 1000 cents, got %d", got)
	}
}

func TestFromCentsKeepsExactCentValue(t *testing.T) {
	if got := FromCents(13000).StringFixed(2); got != "130.00" {
		t.Fatalf("expected 130.00, got %s", got)
	}
	if got := FromCents(-500).StringFixed(2); got != "-5.00" {
		t.Fatalf("expected -5.00, got %s", got)
	}
	if got := FromCents(12345).String(); got != "123.45" {
		t.Fatalf("expected 123.45, got %s", got)
	}
}

func TestAmountsMarshalAsJSONNumbers(t *testing.T) {
	raw, err := json.Marshal(FromCents(13000))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "130" {
		t.Fatalf("expected unquoted 130, got %s", raw)
	}
	raw, err = json.Marshal(FromCents(12345))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "123.45" {
		t.Fatalf("expected 123.45, got %s", raw)
	}
}
