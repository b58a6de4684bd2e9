package calculator

import (
	"math"
	"sort"

	"github.com/mmynk/splitr/internal/models"
)

// Debt is a directed amount between two members after netting.
type Debt struct {
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
}

// MemberBalance is one group member's net position.
type MemberBalance struct {
	UserID       string  `json:"userId"`
	TotalBalance float64 `json:"totalBalance"` // positive = owed money, negative = owes money
	OwedBy       []Debt  `json:"owedBy"`       // who owes this member, after netting
	Owes         []Debt  `json:"owes"`         // who this member owes, after netting
}

// Ledger is the debtor→creditor matrix of raw pairwise debts for a group.
// Cells are addressed through a sorted index of member ids, so pair
// direction is fixed by position rather than by map iteration.
type Ledger struct {
	ids   []string
	index map[string]int
	cells [][]float64 // cells[debtor][creditor]
}

// NewLedger builds a zeroed ledger over the given members. Ids are sorted
// and de-duplicated.
func NewLedger(memberIDs []string) *Ledger {
	ids := make([]string, 0, len(memberIDs))
	seen := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	cells := make([][]float64, len(ids))
	for i := range cells {
		cells[i] = make([]float64, len(ids))
	}
	return &Ledger{ids: ids, index: index, cells: cells}
}

// Members returns the ledger's member ids in sorted order.
func (l *Ledger) Members() []string {
	return l.ids
}

// AddDebt records that debtor owes creditor an additional amount.
// Unknown ids are ignored; callers validate membership before building
// the ledger.
func (l *Ledger) AddDebt(debtor, creditor string, amount float64) {
	d, ok1 := l.index[debtor]
	c, ok2 := l.index[creditor]
	if !ok1 || !ok2 || d == c {
		return
	}
	l.cells[d][c] += amount
}

// ApplyPayment records a direct payment, reducing what the payer owed the
// receiver. The cell may go negative; Net resolves the direction.
func (l *Ledger) ApplyPayment(payer, receiver string, amount float64) {
	p, ok1 := l.index[payer]
	r, ok2 := l.index[receiver]
	if !ok1 || !ok2 || p == r {
		return
	}
	l.cells[p][r] -= amount
}

// Owed returns the amount debtor owes creditor in the current matrix.
func (l *Ledger) Owed(debtor, creditor string) float64 {
	d, ok1 := l.index[debtor]
	c, ok2 := l.index[creditor]
	if !ok1 || !ok2 {
		return 0
	}
	return l.cells[d][c]
}

// NetPair reduces two opposing raw debts between the same pair to a single
// signed net: positive means a owes b the returned amount, negative means
// b owes a.
func NetPair(aOwesB, bOwesA float64) float64 {
	return aOwesB - bOwesA
}

// Net collapses every unordered pair to a single direction: after it runs,
// at most one of cells[a][b], cells[b][a] is nonzero, and both are >= 0.
func (l *Ledger) Net() {
	for a := 0; a < len(l.ids); a++ {
		for b := a + 1; b < len(l.ids); b++ {
			diff := NetPair(l.cells[a][b], l.cells[b][a])
			switch {
			case diff > 0:
				l.cells[a][b], l.cells[b][a] = diff, 0
			case diff < 0:
				l.cells[a][b], l.cells[b][a] = 0, -diff
			default:
				l.cells[a][b], l.cells[b][a] = 0, 0
			}
		}
	}
}

// GroupBalances computes every member's net position from the group's full
// expense and settlement history.
//
// Splits belonging to the payer or already marked paid carry no debt. A
// settlement improves the payer's total and reduces what they owed the
// receiver. Pairwise debts are netted so each pair ends with at most one
// direction outstanding; totals are unclamped and sum to zero across the
// group.
//
// The result follows the order of memberIDs.
func GroupBalances(memberIDs []string, expenses []*models.Expense, settlements []*models.Settlement) []MemberBalance {
	ledger := NewLedger(memberIDs)
	total := make(map[string]float64, len(memberIDs))
	for _, id := range memberIDs {
		total[id] = 0
	}

	for _, e := range expenses {
		for _, s := range e.Splits {
			if s.UserID == e.PayerID || s.Paid {
				continue
			}
			total[e.PayerID] += s.Amount
			total[s.UserID] -= s.Amount
			ledger.AddDebt(s.UserID, e.PayerID, s.Amount)
		}
	}

	for _, s := range settlements {
		total[s.PayerID] += s.Amount
		total[s.ReceiverID] -= s.Amount
		ledger.ApplyPayment(s.PayerID, s.ReceiverID, s.Amount)
	}

	ledger.Net()

	balances := make([]MemberBalance, 0, len(memberIDs))
	for _, id := range memberIDs {
		mb := MemberBalance{UserID: id, TotalBalance: total[id]}
		for _, other := range ledger.Members() {
			if amt := ledger.Owed(other, id); amt > 0 {
				mb.OwedBy = append(mb.OwedBy, Debt{UserID: other, Amount: amt})
			}
			if amt := ledger.Owed(id, other); amt > 0 {
				mb.Owes = append(mb.Owes, Debt{UserID: other, Amount: amt})
			}
		}
		balances = append(balances, mb)
	}
	return balances
}

// PairBalance computes the signed balance between two users from their
// personal (groupless) records as a single running sum: positive means
// otherID owes userID. No clamping is applied.
//
// Expenses not involving both users are skipped; settlements are assumed
// to already be scoped to the pair.
func PairBalance(userID, otherID string, expenses []*models.Expense, settlements []*models.Settlement) float64 {
	var balance float64

	for _, e := range expenses {
		if !ExpenseInvolves(e, userID) || !ExpenseInvolves(e, otherID) {
			continue
		}
		switch e.PayerID {
		case userID:
			if s, ok := unpaidSplit(e, otherID); ok {
				balance += s.Amount
			}
		case otherID:
			if s, ok := unpaidSplit(e, userID); ok {
				balance -= s.Amount
			}
		}
	}

	for _, s := range settlements {
		switch s.PayerID {
		case userID:
			balance += s.Amount
		case otherID:
			balance -= s.Amount
		}
	}

	return balance
}

// ExpenseInvolves reports whether the user is the payer or appears in the
// expense's splits.
func ExpenseInvolves(e *models.Expense, userID string) bool {
	if e.PayerID == userID {
		return true
	}
	for _, s := range e.Splits {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

func unpaidSplit(e *models.Expense, userID string) (models.Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID && !s.Paid {
			return s, true
		}
	}
	return models.Split{}, false
}

// CounterpartBalance is the owed/owing pair feeding the settlement form.
//
// Unlike GroupBalances and PairBalance, settlements subtract from each side
// with a floor at zero: a payment can never push owed or owing negative.
// This display smoothing is intentional and deliberately not unified with
// the unclamped computations above.
type CounterpartBalance struct {
	UserID     string  `json:"userId"`
	YouAreOwed float64 `json:"youAreOwed"`
	YouOwe     float64 `json:"youOwe"`
}

// Net returns owed minus owing.
func (b CounterpartBalance) Net() float64 {
	return b.YouAreOwed - b.YouOwe
}

// PairSettlementBalance computes the clamped two-party owed/owing amounts
// between userID and otherID from their personal records.
func PairSettlementBalance(userID, otherID string, expenses []*models.Expense, settlements []*models.Settlement) CounterpartBalance {
	b := CounterpartBalance{UserID: otherID}

	for _, e := range expenses {
		if !ExpenseInvolves(e, userID) || !ExpenseInvolves(e, otherID) {
			continue
		}
		if e.PayerID == userID {
			if s, ok := unpaidSplit(e, otherID); ok {
				b.YouAreOwed += s.Amount
			}
		}
		if e.PayerID == otherID {
			if s, ok := unpaidSplit(e, userID); ok {
				b.YouOwe += s.Amount
			}
		}
	}

	for _, s := range settlements {
		if s.PayerID == userID {
			b.YouOwe = math.Max(0, b.YouOwe-s.Amount)
		}
		if s.PayerID == otherID {
			b.YouAreOwed = math.Max(0, b.YouAreOwed-s.Amount)
		}
	}

	return b
}

// GroupSettlementBalances computes the clamped owed/owing amounts between
// userID and every other group member. The result follows memberIDs order,
// with userID itself skipped.
func GroupSettlementBalances(userID string, memberIDs []string, expenses []*models.Expense, settlements []*models.Settlement) []CounterpartBalance {
	owed := make(map[string]float64)
	owing := make(map[string]float64)
	var others []string
	for _, id := range memberIDs {
		if id == userID {
			continue
		}
		if _, ok := owed[id]; !ok {
			owed[id] = 0
			owing[id] = 0
			others = append(others, id)
		}
	}

	for _, e := range expenses {
		if e.PayerID == userID {
			for _, s := range e.Splits {
				if s.UserID == userID || s.Paid {
					continue
				}
				if _, ok := owed[s.UserID]; ok {
					owed[s.UserID] += s.Amount
				}
			}
		} else if _, ok := owing[e.PayerID]; ok {
			if s, found := unpaidSplit(e, userID); found {
				owing[e.PayerID] += s.Amount
			}
		}
	}

	for _, s := range settlements {
		if s.PayerID == userID {
			if _, ok := owing[s.ReceiverID]; ok {
				owing[s.ReceiverID] = math.Max(0, owing[s.ReceiverID]-s.Amount)
			}
		} else if s.ReceiverID == userID {
			if _, ok := owed[s.PayerID]; ok {
				owed[s.PayerID] = math.Max(0, owed[s.PayerID]-s.Amount)
			}
		}
	}

	balances := make([]CounterpartBalance, 0, len(others))
	for _, id := range others {
		balances = append(balances, CounterpartBalance{
			UserID:     id,
			YouAreOwed: owed[id],
			YouOwe:     owing[id],
		})
	}
	return balances
}
