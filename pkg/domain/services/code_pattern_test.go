package services

import (
	"testing"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

func TestCodePattern_Match(t *testing.T) {
	tests := []struct {
		pattern      string
		code         entities.ItemCode
		wantMatch    bool
		wantCaptured string
	}{
		{"OLD_*", "OLD_1", true, "1"},
		{"OLD_*", "OLD_", true, ""},
		{"OLD_*", "OLDX1", false, ""},
		{"OLD_*", "NEW_1", false, ""},
		{"*_KG", "SUGAR_KG", true, "SUGAR_KG"},
		{"OLD_*_KG", "OLD_SALT_KG", true, "SALT_KG"},
		{"OLD_*_KG", "OLD_SALT_LB", true, "SALT_LB"},
		{"OLD_*_KG", "NEW_SALT_KG", false, ""},
		{"AB*BA", "ABA", true, "A"},
		{"RAW_A", "RAW_A", true, ""},
		{"RAW_A", "RAW_AB", false, ""},
		{"*", "ANY", true, "ANY"},
		{"A_*_*", "A_X_*", true, "X_*"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+string(tt.code), func(t *testing.T) {
			captured, ok := ParseCodePattern(tt.pattern).Match(tt.code)
			if ok != tt.wantMatch {
				t.Fatalf("Expected match=%v, got %v", tt.wantMatch, ok)
			}
			if ok && captured != tt.wantCaptured {
				t.Errorf("Expected captured %q, got %q", tt.wantCaptured, captured)
			}
		})
	}
}

func TestCodePattern_Expand(t *testing.T) {
	if got := ParseCodePattern("NEW_*").Expand("1"); got != "NEW_1" {
		t.Errorf("Expected NEW_1, got %s", got)
	}
	if got := ParseCodePattern("NEW_*_*").Expand("1"); got != "NEW_1_*" {
		t.Errorf("Expected only the first wildcard replaced, got %s", got)
	}
	if got := ParseCodePattern("FIXED").Expand("1"); got != "FIXED" {
		t.Errorf("Expected pattern without wildcard verbatim, got %s", got)
	}
}

func TestMapCodes(t *testing.T) {
	codes := []entities.ItemCode{"NEW_9", "OLD_1", "OLD_2", "OTHER"}

	mappings := MapCodes(codes, ParseCodePattern("OLD_*"), ParseCodePattern("NEW_*"))

	expected := []CodeMapping{
		{Old: "OLD_1", New: "NEW_1"},
		{Old: "OLD_2", New: "NEW_2"},
	}
	if len(mappings) != len(expected) {
		t.Fatalf("Expected %d mappings, got %d: %v", len(expected), len(mappings), mappings)
	}
	for i, want := range expected {
		if mappings[i] != want {
			t.Errorf("Mapping %d: expected %v, got %v", i, want, mappings[i])
		}
	}
}

func TestMapCodes_UnderscoreIsLiteral(t *testing.T) {
	codes := []entities.ItemCode{"OLD_1", "OLDX2"}

	mappings := MapCodes(codes, ParseCodePattern("OLD_*"), ParseCodePattern("NEW_*"))

	if len(mappings) != 1 || mappings[0].Old != "OLD_1" {
		t.Errorf("Expected only OLD_1 to match, got %v", mappings)
	}
}

func TestMapCodes_IgnoresTextAfterWildcard(t *testing.T) {
	codes := []entities.ItemCode{"OLD_1_KG", "OLD_2_LB", "KEEP_3"}

	mappings := MapCodes(codes, ParseCodePattern("OLD_*_KG"), ParseCodePattern("NEW_*"))

	expected := []CodeMapping{
		{Old: "OLD_1_KG", New: "NEW_1_KG"},
		{Old: "OLD_2_LB", New: "NEW_2_LB"},
	}
	if len(mappings) != len(expected) {
		t.Fatalf("Expected %d mappings, got %d: %v", len(expected), len(mappings), mappings)
	}
	for i, want := range expected {
		if mappings[i] != want {
			t.Errorf("Mapping %d: expected %v, got %v", i, want, mappings[i])
		}
	}
}
