package services

import "testing"

func TestLikeStateToggleAlternates(t *testing.T) {
	start := LikeState{Liked: false, Count: 7}

	once := start.Toggle()
	if !once.Liked || once.Count != 8 {
		t.Fatalf("first toggle = %+v, want liked with count 8", once)
	}

	twice := once.Toggle()
	if twice != start {
		t.Fatalf("second toggle = %+v, want the starting state %+v", twice, start)
	}

	// Repeated toggling keeps alternating between the two states.
	state := start
	for i := 0; i < 6; i++ {
		state = state.Toggle()
	}
	if state != start {
		t.Fatalf("after an even number of toggles state = %+v, want %+v", state, start)
	}
}

func TestLikeStateToggleClampsAtZero(t *testing.T) {
	drifted := LikeState{Liked: true, Count: 0}
	if got := drifted.Toggle(); got.Liked || got.Count != 0 {
		t.Fatalf("unliking with a zero counter = %+v, want unliked count 0", got)
	}
}
