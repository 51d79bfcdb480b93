package models

import (
	"testing"

	"pgregory.net/rapid"
)

// Feature: quadro, Property 1: Classifier Round-Trip
func TestClassifierRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		urgent := rapid.Bool().Draw(t, "urgent")
		important := rapid.Bool().Draw(t, "important")

		q := Classify(urgent, important)
		u, i := q.Attributes()

		if u != urgent || i != important {
			t.Fatalf("Attributes(Classify(%v, %v)) = (%v, %v)", urgent, important, u, i)
		}
	})
}

// Feature: quadro, Property 2: Quadrant Totality
func TestClassifierTotalityProperty(t *testing.T) {
	known := make(map[Quadrant]bool)
	for _, q := range AllQuadrants() {
		known[q] = true
	}

	rapid.Check(t, func(t *rapid.T) {
		urgent := rapid.Bool().Draw(t, "urgent")
		important := rapid.Bool().Draw(t, "important")

		q := Classify(urgent, important)
		if !known[q] {
			t.Fatalf("Classify(%v, %v) returned unknown quadrant %q", urgent, important, q)
		}
	})
}
