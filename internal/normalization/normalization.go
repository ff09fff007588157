package normalization

import (
  "strings"
)

// ParseInputString trims surrounding whitespace from free-form user input.
func ParseInputString(s string) string {
  return strings.TrimSpace(s)
}

// CanonicalPlate is the form plate numbers are stored and compared in:
// trimmed and uppercased, separators left as entered.
func CanonicalPlate(raw string) string {
  return strings.ToUpper(strings.TrimSpace(raw))
}

// PlateCandidates derives the lookup candidates for an operator-entered plate.
// The first candidate is the canonical form of the input. The second swaps the
// separator style: dashes become spaces when a dash is present, otherwise
// spaces become dashes. Inputs with neither separator yield two identical
// candidates, which callers treat as a harmless duplicate.
func PlateCandidates(raw string) []string {
  primary := CanonicalPlate(raw)
  alternate := primary
  if strings.Contains(primary, "-") {
    alternate = strings.ReplaceAll(primary, "-", " ")
  } else if strings.Contains(primary, " ") {
    alternate = strings.ReplaceAll(primary, " ", "-")
  }
  return []string{primary, alternate}
}
