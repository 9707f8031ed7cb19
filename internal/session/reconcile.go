package session

// NetChange computes the net rating change for a finished race. Strict
// priority chain, each step consulted only when the previous one's
// precondition fails:
//
//  1. pre-race rate captured at the course screen, when present and positive
//  2. the last rate persisted in the log
//  3. zero, for the first record ever
//
// Step 2 is a fallback, never a cross-check against step 1.
func NetChange(preRaceRate int, lastLoggedRate int, haveLastLogged bool, finalRate int) int {
	if preRaceRate > 0 {
		return finalRate - preRaceRate
	}
	if haveLastLogged {
		return finalRate - lastLoggedRate
	}
	return 0
}
