package scoring

// Review queues split scored output into two human-facing lists: likely
// wins worth asserting, and rows whose person evidence deserves a second
// look before writing them off.

// ReviewQueues holds the two curated lists, each already ranked best-first.
type ReviewQueues struct {
	Wins           []*ScoredRow
	PersonEvidence []*ScoredRow
}

// BuildReviewQueues partitions scored rows into review queues.
//
// Wins are rows at or above minTier. PersonEvidence collects rows that
// matched a title and either corroborated via person tokens or carry an
// identifier somewhere, regardless of tier. Caps of <= 0 mean uncapped.
func BuildReviewQueues(rows []*ScoredRow, minTier Tier, winsCap, personCap int) ReviewQueues {
	var q ReviewQueues
	minWeight := minTier.Weight()
	for _, sr := range rows {
		if sr.Result.Tier.Weight() >= minWeight && sr.Result.Matched {
			q.Wins = append(q.Wins, sr)
		}
		if sr.Result.HasFlag(FlagTitleExact) && (sr.Result.HasFlag(FlagArtistTokenOverlap) || sr.HasAnyID()) {
			q.PersonEvidence = append(q.PersonEvidence, sr)
		}
	}
	SortBestFirst(q.Wins)
	SortBestFirst(q.PersonEvidence)
	q.Wins = TopN(q.Wins, winsCap)
	q.PersonEvidence = TopN(q.PersonEvidence, personCap)
	return q
}
