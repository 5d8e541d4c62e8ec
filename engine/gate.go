package engine

import "github.com/artrec/hunterd/store"

// ServingState describes which recommendation mode a user is in, derived
// entirely from their swipe counters.
type ServingState string

const (
	// Onboarding means no candidate pool exists yet.
	Onboarding ServingState = "onboarding"
	// ColdStartServing serves pool order until enough swipes accumulate.
	ColdStartServing ServingState = "cold_start"
	// ActiveLearning marks the swipe batch that crosses the personalization
	// threshold and triggers the first taste vector fold.
	ActiveLearning ServingState = "active_learning"
	// PersonalizedServing ranks candidates against the learned taste vector.
	PersonalizedServing ServingState = "personalized"
	// TrainingComplete means enough positive signal was collected; the swipe
	// loop is over.
	TrainingComplete ServingState = "training_complete"
)

const (
	// personalizationThreshold is the swipe count that switches serving from
	// pool order to similarity ranking.
	personalizationThreshold = 5
	// updateEvery batches taste vector updates instead of folding per swipe.
	updateEvery = 5
	// trainingCompleteRights is the positive swipe count that ends training.
	trainingCompleteRights = 30
)

// Personalized reports whether candidates are served by similarity ranking in
// this state.
func (s ServingState) Personalized() bool {
	return s == ActiveLearning || s == PersonalizedServing
}

// Evaluate maps swipe counters onto the serving state.
func Evaluate(stats *store.SwipeStats, hasCandidates bool) ServingState {
	if stats != nil && stats.RightSwipes >= trainingCompleteRights {
		return TrainingComplete
	}
	if !hasCandidates {
		return Onboarding
	}
	if stats == nil || stats.TotalSwipes < personalizationThreshold {
		return ColdStartServing
	}
	if stats.TotalSwipes == personalizationThreshold {
		return ActiveLearning
	}
	return PersonalizedServing
}

// UpdateDue reports whether the taste vector should be refreshed at this
// swipe count. Updates happen on every fifth swipe once the personalization
// threshold is reached.
func UpdateDue(totalSwipes int32) bool {
	return totalSwipes >= personalizationThreshold && totalSwipes%updateEvery == 0
}
