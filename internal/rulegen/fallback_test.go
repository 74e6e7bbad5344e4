package rulegen

import "testing"

func TestFallbackRules_PerRegion(t *testing.T) {
	cases := []struct {
		region string
		count  int
		first  string
	}{
		{"EU", 7, "eu_gdpr_consent"},
		{"US", 6, "us_ccpa_privacy"},
		{"IN", 5, "in_dpdp_consent"},
	}

	for _, tc := range cases {
		rules := FallbackRules(tc.region)
		if len(rules) != tc.count {
			t.Errorf("%s: expected %d rules, got %d", tc.region, tc.count, len(rules))
		}
		if len(rules) > 0 && rules[0].ID != tc.first {
			t.Errorf("%s: expected first rule %s, got %s", tc.region, tc.first, rules[0].ID)
		}
	}
}

func TestFallbackRules_UnknownRegionGetsEU(t *testing.T) {
	for _, region := range []string{"UK", "BR", ""} {
		rules := FallbackRules(region)
		if len(rules) != 7 || rules[0].ID != "eu_gdpr_consent" {
			t.Errorf("%s: expected EU fallback set, got %d rules", region, len(rules))
		}
	}
}

func TestFallbackRules_ReturnsCopy(t *testing.T) {
	first := FallbackRules("EU")
	first[0].Title = "mutated"

	if FallbackRules("EU")[0].Title == "mutated" {
		t.Error("callers must not be able to mutate the shared rule set")
	}
}
