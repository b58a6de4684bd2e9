package calculator

import (
	"fmt"

	"github.com/mmynk/splitr/internal/models"
)

// SplitTolerance is the allowed absolute drift between an expense amount
// and the sum of its split amounts, absorbing floating point noise.
const SplitTolerance = 0.01

// Allocate computes each participant's share of an expense at creation time.
//
// The shares argument carries caller-supplied values keyed by participant id:
// percentages for models.SplitPercentage, absolute amounts for
// models.SplitExact. Participants missing from shares get an even share.
// For models.SplitEqual shares is ignored.
//
// Only the entry matching payerID is marked paid. Allocation is
// deterministic: the output order is the participant order given.
// Rounding remainders are not corrected here; callers validate the total
// with ValidateSplitTotal before persisting.
func Allocate(splitType models.SplitType, amount float64, participantIDs []string, payerID string, shares map[string]float64) ([]models.Split, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", amount)
	}
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			return nil, fmt.Errorf("duplicate participant %q", id)
		}
		seen[id] = true
	}

	n := float64(len(participantIDs))
	splits := make([]models.Split, len(participantIDs))

	switch splitType {
	case models.SplitEqual:
		for i, id := range participantIDs {
			splits[i] = models.Split{
				UserID:     id,
				Amount:     amount / n,
				Percentage: 100 / n,
				Paid:       id == payerID,
			}
		}

	case models.SplitPercentage:
		for i, id := range participantIDs {
			pct, ok := shares[id]
			if !ok {
				pct = 100 / n
			}
			if pct < 0 {
				return nil, fmt.Errorf("percentage for %q must not be negative", id)
			}
			splits[i] = models.Split{
				UserID:     id,
				Amount:     pct / 100 * amount,
				Percentage: pct,
				Paid:       id == payerID,
			}
		}

	case models.SplitExact:
		for i, id := range participantIDs {
			share, ok := shares[id]
			if !ok {
				share = amount / n
			}
			if share < 0 {
				return nil, fmt.Errorf("amount for %q must not be negative", id)
			}
			splits[i] = models.Split{
				UserID:     id,
				Amount:     share,
				Percentage: share / amount * 100,
				Paid:       id == payerID,
			}
		}

	default:
		return nil, fmt.Errorf("unknown split type %q", splitType)
	}

	return splits, nil
}

// ValidateSplitTotal checks that split amounts sum to the expense amount
// within SplitTolerance. Exact-mode callers are responsible for supplying a
// balanced split; nothing is auto-corrected.
func ValidateSplitTotal(splits []models.Split, amount float64) error {
	var total float64
	for _, s := range splits {
		total += s.Amount
	}
	if diff := total - amount; diff > SplitTolerance || diff < -SplitTolerance {
		return fmt.Errorf("split total %v does not match expense amount %v", total, amount)
	}
	return nil
}
