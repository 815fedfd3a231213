package main

import "golang.org/x/exp/rand"

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
