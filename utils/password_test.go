package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if !CheckPassword(hash, "super-secret") {
		t.Fatalf("check failed for correct password")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("check passed for wrong password")
	}
}
