package domain

import "testing"

func TestComputeConfidenceLevel(t *testing.T) {
	tests := []struct {
		name string
		p    float64
		want ConfidenceLevel
	}{
		{"high - 1.0", 1.0, ConfidenceHigh},
		{"high boundary - 0.8", 0.8, ConfidenceHigh},
		{"medium - 0.79", 0.79, ConfidenceMedium},
		{"medium boundary - 0.5", 0.5, ConfidenceMedium},
		{"low - 0.49", 0.49, ConfidenceLow},
		{"low - 0.0", 0.0, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeConfidenceLevel(tt.p)
			if got != tt.want {
				t.Errorf("ComputeConfidenceLevel(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestValidConfidenceLevel(t *testing.T) {
	for _, l := range []string{"high", "medium", "low"} {
		if !ValidConfidenceLevel(l) {
			t.Errorf("expected %q to be valid", l)
		}
	}
	if ValidConfidenceLevel("certain") {
		t.Error("expected \"certain\" to be invalid")
	}
}

func TestTreatmentMethod_DefaultPriority(t *testing.T) {
	tests := []struct {
		method TreatmentMethod
		want   int
	}{
		{MethodOrganic, PriorityHigh},
		{"Organic", PriorityHigh},
		{MethodCultural, PriorityHigh},
		{MethodChemical, PriorityMedium},
		{MethodGeneral, PriorityMedium},
		{"", PriorityMedium},
	}

	for _, tt := range tests {
		if got := tt.method.DefaultPriority(); got != tt.want {
			t.Errorf("%q.DefaultPriority() = %d, want %d", tt.method, got, tt.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := map[string]Category{
		"pests":        CategoryPest,
		"Pest":         CategoryPest,
		" DISEASES":    CategoryDisease,
		"deficiency":   CategoryDeficiency,
		"Deficiencies": CategoryDeficiency,
		"virus":        Category("virus"),
		"Stress":       Category("stress"),
		"nutrients":    Category("nutrients"),
	}
	for in, want := range tests {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEntry_AffectsCrop(t *testing.T) {
	unrestricted := &Entry{Key: "a"}
	if !unrestricted.AffectsCrop("tomato") {
		t.Error("entry without affected_crops should match any crop")
	}

	all := &Entry{Key: "b", AffectedCrops: []string{"All"}}
	if !all.AffectsCrop("wheat") {
		t.Error("entry listing \"all\" should match any crop")
	}

	listed := &Entry{Key: "c", AffectedCrops: []string{"Tomato", "Potato"}}
	if !listed.AffectsCrop("tomato") {
		t.Error("expected case-insensitive crop match")
	}
	if listed.AffectsCrop("rice") {
		t.Error("expected rice not to match")
	}

	empty := &Entry{Key: "d", AffectedCrops: []string{}}
	if empty.AffectsCrop("tomato") {
		t.Error("explicit empty crop list should match nothing")
	}
}

func TestNewKnowledgeBase_DropsDuplicateKeys(t *testing.T) {
	kb, dropped := NewKnowledgeBase([]*Entry{
		{Key: "aphids", Name: "Aphids"},
		{Key: "mites", Name: "Spider Mites"},
		{Key: "aphids", Name: "Green Aphids"},
	})

	if kb.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", kb.Len())
	}
	if len(dropped) != 1 || dropped[0].Name != "Green Aphids" {
		t.Fatalf("expected the second aphids entry to be dropped, got %+v", dropped)
	}
	e, ok := kb.Get("aphids")
	if !ok || e.Name != "Aphids" {
		t.Fatalf("expected first aphids entry to win, got %+v", e)
	}
	entries := kb.Entries()
	if entries[0].Key != "aphids" || entries[1].Key != "mites" {
		t.Fatalf("expected load order to be preserved, got %s, %s", entries[0].Key, entries[1].Key)
	}
}
