package dicebench

import "sort"

// Rank returns competition ranks for scores, aligned with the input. Higher
// scores rank first; equal scores share a rank and consume its slots, so
// [10, 10, 7] ranks as [1, 1, 3].
func Rank(scores []int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranks := make([]int, len(scores))
	for pos, idx := range order {
		if pos > 0 && scores[idx] == scores[order[pos-1]] {
			ranks[idx] = ranks[order[pos-1]]
			continue
		}
		ranks[idx] = pos + 1
	}
	return ranks
}

func rankCompetitors(competitors []*Competitor) {
	scores := make([]int, len(competitors))
	for i, c := range competitors {
		scores[i] = c.TotalScore
	}
	for i, rank := range Rank(scores) {
		competitors[i].CurrentRank = rank
	}
}
