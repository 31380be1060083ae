package banking

// Triage partitions match results into four disjoint buckets.
type Triage struct {
	AutoConfirmed []MatchResult
	NeedsReview   []MatchResult
	NoMatch       []MatchResult
	NotBills      []MatchResult
}

// CategorizeMatchResults places every result in exactly one bucket.
// Credits are never bills, whatever their candidates scored.
func CategorizeMatchResults(results []MatchResult) Triage {
	triage := Triage{
		AutoConfirmed: []MatchResult{},
		NeedsReview:   []MatchResult{},
		NoMatch:       []MatchResult{},
		NotBills:      []MatchResult{},
	}
	for _, result := range results {
		switch {
		case !result.Transaction.IsDebit:
			triage.NotBills = append(triage.NotBills, result)
		case result.AutoConfirm:
			triage.AutoConfirmed = append(triage.AutoConfirmed, result)
		case result.BestMatch != nil:
			triage.NeedsReview = append(triage.NeedsReview, result)
		default:
			triage.NoMatch = append(triage.NoMatch, result)
		}
	}
	return triage
}
