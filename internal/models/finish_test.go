package models

import (
	"testing"
)

func TestNormalizeFinish(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Finish
	}{
		{"uppercase foil", "FOIL", FinishFoil},
		{"scryfall foil", "foil", FinishFoil},
		{"scryfall etched", "etched", FinishEtched},
		{"spaced etched", " Etched Foil ", FinishEtched},
		{"scryfall nonfoil", "nonfoil", FinishNonfoil},
		{"legacy normal", "Normal", FinishNonfoil},
		{"empty defaults to nonfoil", "", FinishNonfoil},
		{"unknown defaults to nonfoil", "glossy", FinishNonfoil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeFinish(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeFinish(%q) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFinishIsFoilVariant(t *testing.T) {
	if FinishNonfoil.IsFoilVariant() {
		t.Error("NONFOIL should not be a foil variant")
	}
	if !FinishFoil.IsFoilVariant() {
		t.Error("FOIL should be a foil variant")
	}
	if !FinishEtched.IsFoilVariant() {
		t.Error("ETCHED should be a foil variant")
	}
}

func TestAllFinishes(t *testing.T) {
	finishes := AllFinishes()
	if len(finishes) != 3 {
		t.Fatalf("AllFinishes() returned %d finishes, want 3", len(finishes))
	}
	want := []Finish{FinishNonfoil, FinishFoil, FinishEtched}
	for i, f := range finishes {
		if f != want[i] {
			t.Errorf("AllFinishes()[%d] = %s, want %s", i, f, want[i])
		}
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
	}
	if Finish("SHINY").Valid() {
		t.Error("unknown finish should not be valid")
	}
}
