package search

import "github.com/letmevibethatforyou/unicatalog"

// Kind tags the variant a State holds.
type Kind int

const (
	// KindIdle is the state before the first search.
	KindIdle Kind = iota
	// KindLoading means a catalogue fetch is in flight.
	KindLoading
	// KindSuccess carries results.
	KindSuccess
	// KindError carries a user-facing message.
	KindError
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the observable search state. Exactly one Kind holds at a time
// and every transition replaces the whole value.
//
// Results is shared between subscribers and must be treated as read-only.
type State struct {
	Kind Kind
	// Term is the search term the state answers.
	Term string
	// Results is set for KindSuccess; it is empty for every other kind.
	Results []unicatalog.University
	// Message is the localized error text for KindError.
	Message string
	// Err is the underlying failure for KindError.
	Err error
}

func idleState() State {
	return State{Kind: KindIdle, Results: []unicatalog.University{}}
}

func loadingState(term string) State {
	return State{Kind: KindLoading, Term: term, Results: []unicatalog.University{}}
}

func successState(term string, results []unicatalog.University) State {
	if results == nil {
		results = []unicatalog.University{}
	}
	return State{Kind: KindSuccess, Term: term, Results: results}
}

func errorState(term, message string, err error) State {
	return State{Kind: KindError, Term: term, Results: []unicatalog.University{}, Message: message, Err: err}
}
