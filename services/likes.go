package services

// LikeState is the viewer's like marker together with the target's counter.
type LikeState struct {
	Liked bool
	Count int
}

// Toggle returns the state after one like action. Unliking decrements the
// counter but never below zero, so a drifted counter cannot go negative.
func (s LikeState) Toggle() LikeState {
	if s.Liked {
		next := LikeState{Liked: false, Count: s.Count - 1}
		if next.Count < 0 {
			next.Count = 0
		}
		return next
	}
	return LikeState{Liked: true, Count: s.Count + 1}
}
