package token

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/runway/internal/domain"
)

// Feature names a token-costing AI action.
type Feature string

// Step names a one-time rewardable user action.
type Step string

// Features with a cost.
const (
	FeatureResearchAnalysis         Feature = "RESEARCH_ANALYSIS"
	FeatureAIChatMessage            Feature = "AI_CHAT_MESSAGE"
	FeatureQuestionEvaluation       Feature = "QUESTION_EVALUATION"
	FeatureWhatIfAnalysis           Feature = "WHAT_IF_ANALYSIS"
	FeatureImplementationGeneration Feature = "IMPLEMENTATION_GENERATION"
	FeatureMissionSteps             Feature = "MISSION_STEPS"
)

// Steps with a reward.
const (
	StepHomebaseStartupInfo      Step = "HOMEBASE_STARTUP_INFO"
	StepResearchOverviewComplete Step = "RESEARCH_OVERVIEW_COMPLETE"
	StepFirstQuestionEvaluation  Step = "FIRST_QUESTION_EVALUATION"
	StepMomTestGoodScore         Step = "MOM_TEST_GOOD_SCORE"
	StepProductActionTable       Step = "PRODUCT_ACTION_TABLE"
	StepSalesValueProposition    Step = "SALES_VALUE_PROPOSITION"
	StepInterviewQuestionsSaved  Step = "INTERVIEW_QUESTIONS_SAVED"
)

// Entry is a catalog line: amount plus the label shown in toasts and history.
type Entry struct {
	Amount int64
	Reason string
}

var costs = map[Feature]Entry{
	FeatureResearchAnalysis:         {15, "Research analysis"},
	FeatureAIChatMessage:            {5, "AI chat message"},
	FeatureQuestionEvaluation:       {10, "Question evaluation"},
	FeatureWhatIfAnalysis:           {20, "What-if analysis"},
	FeatureImplementationGeneration: {25, "Implementation plan generation"},
	FeatureMissionSteps:             {20, "Mission steps"},
}

var rewards = map[Step]Entry{
	StepHomebaseStartupInfo:      {30, "Completed startup info"},
	StepResearchOverviewComplete: {50, "Completed research overview"},
	StepFirstQuestionEvaluation:  {25, "First question evaluation"},
	StepMomTestGoodScore:         {40, "Good Mom Test score"},
	StepProductActionTable:       {35, "Created product action table"},
	StepSalesValueProposition:    {35, "Created sales value proposition"},
	StepInterviewQuestionsSaved:  {20, "Saved interview questions"},
}

// ParseFeature validates a feature key against the cost catalog.
func ParseFeature(s string) (Feature, error) {
	f := Feature(s)
	if _, ok := costs[f]; !ok {
		return "", fmt.Errorf("feature %q: %w", s, domain.ErrUnknownFeature)
	}
	return f, nil
}

// ParseStep validates a step key against the reward catalog.
func ParseStep(s string) (Step, error) {
	st := Step(s)
	if _, ok := rewards[st]; !ok {
		return "", fmt.Errorf("step %q: %w", s, domain.ErrUnknownStep)
	}
	return st, nil
}

// Cost returns the catalog entry for a feature.
func Cost(f Feature) (Entry, bool) {
	e, ok := costs[f]
	return e, ok
}

// Reward returns the catalog entry for a step.
func Reward(s Step) (Entry, bool) {
	e, ok := rewards[s]
	return e, ok
}

// Features lists every costed feature in key order.
func Features() []Feature {
	out := make([]Feature, 0, len(costs))
	for f := range costs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Steps lists every rewarded step in key order.
func Steps() []Step {
	out := make([]Step, 0, len(rewards))
	for s := range rewards {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
