package services

import "hangar/contexts/distribution/store-submission-service/domain/entities"

// transitions is the review pipeline. ReviewRejected is terminal: a rejected
// submission is never revived, a new one is created instead.
var transitions = map[entities.SubmissionState][]entities.SubmissionState{
	entities.StateInitial:      {entities.StateSubmitReview},
	entities.StateSubmitReview: {entities.StateReviewPassed, entities.StateReviewRejected},
	entities.StateReviewPassed: {entities.StateReleased},
}

// CanTransition reports whether a submission may move from one state to
// another.
func CanTransition(from, to entities.SubmissionState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a state has no outgoing transitions.
func Terminal(state entities.SubmissionState) bool {
	return len(transitions[state]) == 0
}
