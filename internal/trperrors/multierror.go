package trperrors

import "strings"

// MultiError aggregates per-record shape errors collected during
// ingestion. spec.md §7's propagation policy: these are reported in
// aggregate and the run aborts before pool construction if any occur.
type MultiError struct {
	Errors []*EngineError
}

func (m *MultiError) Add(err *EngineError) {
	m.Errors = append(m.Errors, err)
}

func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ErrOrNil returns m as an error if it holds any entries, else nil — the
// idiom callers use to decide whether to abort before pool construction.
func (m *MultiError) ErrOrNil() error {
	if m == nil || !m.HasErrors() {
		return nil
	}
	return m
}
