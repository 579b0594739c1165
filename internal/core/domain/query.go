package domain

import "time"

// Query defaults.
const (
	DefaultTopN           = 5
	DefaultCandidateCount = 50
	DefaultMinMatchCount  = 10
)

// QueryOptions configures a scene query.
// Zero values fall back to the defaults. A negative MinMatchCount disables
// the threshold.
type QueryOptions struct {
	// TopN is the maximum number of results returned.
	TopN int

	// CandidateCount is the number of nearest neighbours reranked.
	CandidateCount int

	// MinMatchCount is the minimum rerank score a result must reach.
	MinMatchCount int

	// Render requests a presentation rendering of each matched frame.
	Render bool
}

// DefaultQueryOptions returns the standard query options.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		TopN:           DefaultTopN,
		CandidateCount: DefaultCandidateCount,
		MinMatchCount:  DefaultMinMatchCount,
	}
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (o QueryOptions) WithDefaults() QueryOptions {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.CandidateCount <= 0 {
		o.CandidateCount = DefaultCandidateCount
	}
	if o.MinMatchCount == 0 {
		o.MinMatchCount = DefaultMinMatchCount
	}
	if o.MinMatchCount < 0 {
		o.MinMatchCount = 0
	}
	return o
}

// Neighbor is one vector index search hit.
type Neighbor struct {
	SequenceIndex uint64
	Distance      float64
}

// Candidate is a scene under consideration during a query.
type Candidate struct {
	// Scene is the catalog record of the candidate.
	Scene SceneRecord

	// ANNDistance is the squared L2 distance from the query embedding.
	ANNDistance float64

	// RerankScore is the local feature match count.
	RerankScore int64
}

// RanksBefore reports whether c orders ahead of o in a final ranking:
// higher score first, then smaller distance, then lower sequence index.
func (c Candidate) RanksBefore(o Candidate) bool {
	if c.RerankScore != o.RerankScore {
		return c.RerankScore > o.RerankScore
	}
	if c.ANNDistance != o.ANNDistance {
		return c.ANNDistance < o.ANNDistance
	}
	return c.Scene.SequenceIndex < o.Scene.SequenceIndex
}

// QueryOutcome is the terminal state of a query.
type QueryOutcome string

// Query outcomes.
const (
	// OutcomeRanked means at least one scene survived reranking.
	OutcomeRanked QueryOutcome = "ranked"

	// OutcomeNoCandidates means the vector search returned nothing.
	OutcomeNoCandidates QueryOutcome = "no_candidates"

	// OutcomeNoMatch means no local descriptors could be extracted from the query.
	OutcomeNoMatch QueryOutcome = "no_match"

	// OutcomeNoSurvivors means every candidate fell below the match threshold.
	OutcomeNoSurvivors QueryOutcome = "no_survivors"
)

// Message returns the user-facing description of the outcome.
func (o QueryOutcome) Message() string {
	switch o {
	case OutcomeRanked:
		return "similar scenes found"
	case OutcomeNoCandidates:
		return "no candidate scenes in the index"
	case OutcomeNoMatch:
		return "no distinctive features in the query image"
	case OutcomeNoSurvivors:
		return "no similar scene found"
	default:
		return unknownDescription
	}
}

// SceneMatch is one ranked query result.
type SceneMatch struct {
	VideoID       string
	Timestamp     float64
	Score         int64
	ANNDistance   float64
	SequenceIndex uint64

	// Rendering is an optional presentation of the matched frame (a data URI).
	Rendering string
}

// QueryResult is the output of a scene query.
// An empty Matches slice is a negative answer, never an error.
type QueryResult struct {
	Outcome QueryOutcome
	Matches []SceneMatch

	// CandidatesConsidered is the number of vector search hits.
	CandidatesConsidered int

	// CandidatesScored is the number of candidates that were reranked successfully.
	CandidatesScored int

	Took time.Duration
}

// Empty reports whether the query found nothing.
func (r QueryResult) Empty() bool {
	return len(r.Matches) == 0
}
