package models

import "strings"

// Finish is the physical treatment of a printing; it decides which market
// price applies to a collection entry.
type Finish string

const (
	FinishNonfoil Finish = "NONFOIL"
	FinishFoil    Finish = "FOIL"
	FinishEtched  Finish = "ETCHED"
)

// AllFinishes returns the finishes in display order
func AllFinishes() []Finish {
	return []Finish{
		FinishNonfoil,
		FinishFoil,
		FinishEtched,
	}
}

// IsFoilVariant reports whether the finish is priced off the foil market.
// Etched foils have no separate Scryfall price and trade as foils.
func (f Finish) IsFoilVariant() bool {
	return f == FinishFoil || f == FinishEtched
}

// Valid reports whether f is one of the known finishes
func (f Finish) Valid() bool {
	switch f {
	case FinishNonfoil, FinishFoil, FinishEtched:
		return true
	}
	return false
}

// NormalizeFinish maps loose spellings (Scryfall's lowercase "nonfoil",
// "etched", legacy "normal") to a Finish. Unknown or empty values are NONFOIL.
func NormalizeFinish(s string) Finish {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foil":
		return FinishFoil
	case "etched", "etched foil", "etched_foil":
		return FinishEtched
	default:
		return FinishNonfoil
	}
}
