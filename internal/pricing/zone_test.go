package pricing

import "testing"

func TestZoneQuote(t *testing.T) {
	z := PricingZone{
		BaseFeeCents:   5000, // 50 元起步
		PerKmCents:     300,  // 3 元/公里
		HookupFeeCents: 2000,
	}

	if got := z.Quote(0); got != 7000 {
		t.Fatalf("zero distance: expected 7000, got %d", got)
	}
	if got := z.Quote(12.4); got != 7000+3720 {
		t.Fatalf("12.4km: expected 10720, got %d", got)
	}
	// 负距离按 0 处理
	if got := z.Quote(-5); got != 7000 {
		t.Fatalf("negative distance: expected 7000, got %d", got)
	}
}
