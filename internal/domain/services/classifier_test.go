package services

import "testing"

func TestGuessCategoryMedical(t *testing.T) {
	if got := GuessCategory("מרשם.pdf"); got != CategoryMedical {
		t.Fatalf("expected %s, got %s", CategoryMedical, got)
	}
}

func TestGuessCategoryCertificate(t *testing.T) {
	if got := GuessCategory("דרכון.jpg"); got != CategoryCertificate {
		t.Fatalf("expected %s, got %s", CategoryCertificate, got)
	}
}

func TestGuessCategoryWarranty(t *testing.T) {
	if got := GuessCategory("תעודת_אחריות.pdf"); got != CategoryWarranty {
		t.Fatalf("expected %s, got %s", CategoryWarranty, got)
	}
}

func TestGuessCategoryNoMatch(t *testing.T) {
	if got := GuessCategory("img_1234.png"); got != CategoryOther {
		t.Fatalf("expected %s, got %s", CategoryOther, got)
	}
}

func TestGuessCategorySubstringFalsePositive(t *testing.T) {
	// "photo" contains the home-category keyword "hot", so the bidirectional
	// substring match scores it; the heuristic accepts this over missing
	// genuine partial matches.
	if got := GuessCategory("vacation-photo.png"); got != CategoryHome {
		t.Fatalf("expected %s, got %s", CategoryHome, got)
	}
}

func TestGuessCategoryArnonaPrefersHome(t *testing.T) {
	// "ארנונה" appears in five home keywords but only three finance ones,
	// so municipal-tax filenames land in home.
	if got := GuessCategory("ארנונה_2024.pdf"); got != CategoryHome {
		t.Fatalf("expected %s, got %s", CategoryHome, got)
	}
}

func TestGuessCategoryStripsLeadingVav(t *testing.T) {
	// "ומרשם" should match the keyword "מרשם" once the conjunction is dropped.
	if got := GuessCategory("ומרשם.pdf"); got != CategoryMedical {
		t.Fatalf("expected %s, got %s", CategoryMedical, got)
	}
}

func TestGuessCategoryTieGoesToEarlierCategory(t *testing.T) {
	// One warranty keyword ("rma") and one certificate keyword ("passport")
	// score 1 each; the warranty category is enumerated first.
	if got := GuessCategory("rma_passport.pdf"); got != CategoryWarranty {
		t.Fatalf("expected %s, got %s", CategoryWarranty, got)
	}
}

func TestNormalizeWord(t *testing.T) {
	cases := map[string]string{
		"  חשבונית,  ": "חשבונית",
		"וחשבונית":     "חשבונית",
		"(קבלה)":       "קבלה",
		"ו":            "ו", // single letter keeps its vav
	}
	for in, want := range cases {
		if got := normalizeWord(in); got != want {
			t.Errorf("normalizeWord(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKnownCategory(t *testing.T) {
	if !KnownCategory(CategoryFinance) {
		t.Fatal("expected finance to be known")
	}
	if KnownCategory("מסמכים") {
		t.Fatal("expected unknown name to be rejected")
	}
}
