package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/splitr/internal/models"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		splitType    models.SplitType
		amount       float64
		participants []string
		payerID      string
		shares       map[string]float64
		wantErr      bool
		validateFunc func(t *testing.T, splits []models.Split)
	}{
		{
			name:         "equal split between two",
			splitType:    models.SplitEqual,
			amount:       100.0,
			participants: []string{"alice", "bob"},
			payerID:      "alice",
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if math.Abs(s.Amount-50.0) > 0.01 {
						t.Errorf("%s amount = %v, want 50.0", s.UserID, s.Amount)
					}
					if math.Abs(s.Percentage-50.0) > 0.01 {
						t.Errorf("%s percentage = %v, want 50.0", s.UserID, s.Percentage)
					}
				}
				if !splits[0].Paid {
					t.Error("payer's split should be marked paid")
				}
				if splits[1].Paid {
					t.Error("non-payer's split should not be marked paid")
				}
			},
		},
		{
			name:         "equal split among three",
			splitType:    models.SplitEqual,
			amount:       90.0,
			participants: []string{"a", "b", "c"},
			payerID:      "a",
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if math.Abs(s.Amount-30.0) > 0.01 {
						t.Errorf("%s amount = %v, want 30.0", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:         "percentage split with explicit shares",
			splitType:    models.SplitPercentage,
			amount:       200.0,
			participants: []string{"alice", "bob"},
			payerID:      "bob",
			shares:       map[string]float64{"alice": 75, "bob": 25},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if math.Abs(splits[0].Amount-150.0) > 0.01 {
					t.Errorf("alice amount = %v, want 150.0", splits[0].Amount)
				}
				if math.Abs(splits[1].Amount-50.0) > 0.01 {
					t.Errorf("bob amount = %v, want 50.0", splits[1].Amount)
				}
			},
		},
		{
			name:         "percentage split defaults evenly",
			splitType:    models.SplitPercentage,
			amount:       60.0,
			participants: []string{"a", "b", "c"},
			payerID:      "a",
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if math.Abs(s.Amount-20.0) > 0.01 {
						t.Errorf("%s amount = %v, want 20.0", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:         "exact split derives percentages",
			splitType:    models.SplitExact,
			amount:       80.0,
			participants: []string{"alice", "bob"},
			payerID:      "alice",
			shares:       map[string]float64{"alice": 60, "bob": 20},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if math.Abs(splits[0].Percentage-75.0) > 0.01 {
					t.Errorf("alice percentage = %v, want 75.0", splits[0].Percentage)
				}
				if math.Abs(splits[1].Percentage-25.0) > 0.01 {
					t.Errorf("bob percentage = %v, want 25.0", splits[1].Percentage)
				}
			},
		},
		{
			name:         "exact split defaults evenly",
			splitType:    models.SplitExact,
			amount:       30.0,
			participants: []string{"a", "b", "c"},
			payerID:      "b",
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if math.Abs(s.Amount-10.0) > 0.01 {
						t.Errorf("%s amount = %v, want 10.0", s.UserID, s.Amount)
					}
				}
			},
		},
		{
			name:         "zero amount should error",
			splitType:    models.SplitEqual,
			amount:       0,
			participants: []string{"alice"},
			payerID:      "alice",
			wantErr:      true,
		},
		{
			name:         "no participants should error",
			splitType:    models.SplitEqual,
			amount:       10.0,
			participants: []string{},
			payerID:      "alice",
			wantErr:      true,
		},
		{
			name:         "duplicate participant should error",
			splitType:    models.SplitEqual,
			amount:       10.0,
			participants: []string{"alice", "alice"},
			payerID:      "alice",
			wantErr:      true,
		},
		{
			name:         "unknown split type should error",
			splitType:    models.SplitType("weird"),
			amount:       10.0,
			participants: []string{"alice"},
			payerID:      "alice",
			wantErr:      true,
		},
		{
			name:         "negative percentage should error",
			splitType:    models.SplitPercentage,
			amount:       10.0,
			participants: []string{"alice", "bob"},
			payerID:      "alice",
			shares:       map[string]float64{"alice": -5, "bob": 105},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Allocate(tt.splitType, tt.amount, tt.participants, tt.payerID, tt.shares)
			if (err != nil) != tt.wantErr {
				t.Errorf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestAllocateDeterministic(t *testing.T) {
	participants := []string{"c", "a", "b"}
	first, err := Allocate(models.SplitEqual, 99.0, participants, "a", nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	second, err := Allocate(models.SplitEqual, 99.0, participants, "a", nil)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("split %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
	if first[0].UserID != "c" || first[1].UserID != "a" || first[2].UserID != "b" {
		t.Errorf("splits should preserve participant order, got %+v", first)
	}
}

func TestValidateSplitTotal(t *testing.T) {
	tests := []struct {
		name    string
		splits  []models.Split
		amount  float64
		wantErr bool
	}{
		{
			name:   "exact match",
			splits: []models.Split{{Amount: 50}, {Amount: 50}},
			amount: 100,
		},
		{
			name:   "within tolerance",
			splits: []models.Split{{Amount: 33.33}, {Amount: 33.33}, {Amount: 33.33}},
			amount: 100,
		},
		{
			name:    "outside tolerance",
			splits:  []models.Split{{Amount: 60}, {Amount: 20}},
			amount:  100,
			wantErr: true,
		},
		{
			name:    "overshooting outside tolerance",
			splits:  []models.Split{{Amount: 60}, {Amount: 60}},
			amount:  100,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplitTotal(tt.splits, tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSplitTotal() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
