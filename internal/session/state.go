// Package session holds the dashboard's working state: the loaded dataset
// and the user's current selection over it.
package session

import (
	"sync"

	"csvdash/domain/dataset"
	filters "csvdash/internal/dataset"
	"csvdash/internal/errors"
)

// GeneratedColumn is the column the generated bodies are shown under.
const GeneratedColumn = "Generated Email"

// State is the single-user working state. Every derived view is recomputed
// from the source dataset, so the source is never modified.
type State struct {
	mu sync.RWMutex

	source    *dataset.Dataset
	column    string
	rng       *filters.Range
	search    string
	generated map[int]string
}

// New returns an empty state
func New() *State {
	return &State{}
}

// Load replaces the dataset and resets the selection. The first column is
// selected.
func (s *State) Load(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = ds
	s.column = ""
	if len(ds.Columns) > 0 {
		s.column = ds.Columns[0].Name
	}
	s.rng = nil
	s.search = ""
	s.generated = nil
}

// Loaded reports whether a dataset is present.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source != nil
}

// Source returns the dataset as loaded.
func (s *State) Source() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source == nil {
		return nil, errors.NotFound("no dataset loaded")
	}
	return s.source, nil
}

// Column returns the selected column name.
func (s *State) Column() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.column
}

// Range returns the active range, if any.
func (s *State) Range() (filters.Range, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rng == nil {
		return filters.Range{}, false
	}
	return *s.rng, true
}

// SearchTerm returns the active search term.
func (s *State) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// Select changes the column. Range and search belong to the previous column
// and are cleared.
func (s *State) Select(column string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return errors.NotFound("no dataset loaded")
	}
	if !s.source.HasColumn(column) {
		return errors.UnknownColumn(column)
	}
	if column != s.column {
		s.rng = nil
		s.search = ""
	}
	s.column = column
	return nil
}

// SetRange validates and stores the range for the selected column.
func (s *State) SetRange(min, max float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil {
		return errors.NotFound("no dataset loaded")
	}
	// Validate against the source so a bad range never gets stored.
	if _, err := filters.FilterByRange(s.source, s.column, min, max); err != nil {
		return err
	}
	s.rng = &filters.Range{Min: min, Max: max}
	return nil
}

// ClearRange removes the range.
func (s *State) ClearRange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = nil
}

// SetSearch stores the search term. An empty term disables search.
func (s *State) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// SetGenerated stores generated bodies keyed by row Index.
func (s *State) SetGenerated(bodies map[int]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = bodies
}

// Generated returns the stored bodies.
func (s *State) Generated() map[int]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]string, len(s.generated))
	for k, v := range s.generated {
		out[k] = v
	}
	return out
}

// Filtered returns the range-filtered view. Statistics, charts and emails
// work on this view.
func (s *State) Filtered() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered()
}

// View returns the filtered view narrowed by the search term, with the
// generated bodies appended when present.
func (s *State) View() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, err := s.filtered()
	if err != nil {
		return nil, err
	}
	if s.search != "" {
		if ds, err = filters.Search(ds, s.column, s.search); err != nil {
			return nil, err
		}
	}
	if len(s.generated) > 0 {
		values := make(map[int]dataset.Value, len(s.generated))
		for idx, body := range s.generated {
			values[idx] = dataset.Text(body)
		}
		ds = ds.WithColumn(dataset.Column{Name: GeneratedColumn, Kind: dataset.KindText}, values)
	}
	return ds, nil
}

func (s *State) filtered() (*dataset.Dataset, error) {
	if s.source == nil {
		return nil, errors.NotFound("no dataset loaded")
	}
	if s.rng == nil {
		return s.source, nil
	}
	return filters.FilterByRange(s.source, s.column, s.rng.Min, s.rng.Max)
}
