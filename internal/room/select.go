package room

// maxStreak caps how many times in a row the same member can win the
// spin while someone else is available.
const maxStreak = 3

// SelectWinner draws a uniformly random index over members. When the
// draw would extend an already maxed-out streak and an alternative
// exists, it redraws uniformly over the other members' indices, so the
// previous winner is excluded entirely rather than re-rolled.
//
// roll must return a uniform int in [0, n). members must be non-empty;
// the coordinator never calls this on an empty room.
func SelectWinner(members []Member, lastWinnerID string, lastWinnerStreak int, roll func(n int) int) int {
	winner := roll(len(members))
	if len(members) > 1 && lastWinnerID != "" &&
		members[winner].ID == lastWinnerID && lastWinnerStreak >= maxStreak {
		others := make([]int, 0, len(members)-1)
		for i := range members {
			if members[i].ID != lastWinnerID {
				others = append(others, i)
			}
		}
		winner = others[roll(len(others))]
	}
	return winner
}
