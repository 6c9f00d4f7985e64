package pipeline

import (
	"errors"
	"sort"
	"time"

	"github.com/reelindex/reelindex/internal/library/scanner"
	"github.com/reelindex/reelindex/internal/metadata"
)

// State is the position of a candidate in the pipeline.
type State string

const (
	StateDiscovered     State = "discovered"
	StateEnriching      State = "enriching"
	StateAssetsFetching State = "assets_fetching"
	StatePersisted      State = "persisted"
	StateFailed         State = "failed"
	StateSkipped        State = "skipped"
)

// Outcome is the record of one candidate's trip through the pipeline.
type Outcome struct {
	Path     string
	State    State
	MovieID  int64
	Report   metadata.Report
	Assets   metadata.AssetReport
	Err      error
	Duration time.Duration
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	RunID         string
	Discovered    int
	ParseFailures int
	ListFailures  int
	Persisted     int
	Failed        int
	NotFound      int
	Skipped       int
	Outcomes      []Outcome
	Duration      time.Duration
}

func (s *Summary) recordWalkError(err error) {
	var listErr *scanner.ListError
	switch {
	case errors.As(err, &listErr):
		s.ListFailures++
	default:
		s.ParseFailures++
	}
}

func (s *Summary) add(o Outcome) {
	switch o.State {
	case StatePersisted:
		s.Persisted++
	case StateSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	if o.Report.NotFound() {
		s.NotFound++
	}
	s.Outcomes = append(s.Outcomes, o)
}

func (s *Summary) sortOutcomes() {
	sort.Slice(s.Outcomes, func(i, j int) bool { return s.Outcomes[i].Path < s.Outcomes[j].Path })
}

// Outcome returns the outcome recorded for path.
func (s *Summary) Outcome(path string) (Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.Path == path {
			return o, true
		}
	}
	return Outcome{}, false
}
