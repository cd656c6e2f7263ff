package domain

import "time"

// Quote represents a catalog entry with a source attribution.
// A quote owns its tag set; tags are never shared between quotes.
type Quote struct {
	ID        int64
	Text      string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []string // insertion order, duplicates allowed
}

// Tag is a label row belonging to exactly one quote.
type Tag struct {
	ID        int64
	QuoteID   int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchFilter holds the optional substring criteria for listing quotes.
// A nil field means the criterion is absent. All matches are
// case-insensitive "contains"; the tag criterion matches a quote when at
// least one of its tags matches.
type SearchFilter struct {
	Text   *string
	Source *string
	Tag    *string
}

// Empty reports whether no criterion is set, i.e. the filter matches
// every quote.
func (f SearchFilter) Empty() bool {
	return f.Text == nil && f.Source == nil && f.Tag == nil
}

// QuoteUpdate carries the fields of an update call. Nil fields keep their
// prior values; a non-nil Tags (even empty) replaces the whole tag set.
type QuoteUpdate struct {
	Text   *string
	Source *string
	Tags   *[]string
}

// QuoteRepository defines data access for quotes and their tags
type QuoteRepository interface {
	Create(text, source string, tags []string) (*Quote, error)
	GetByID(id int64) (*Quote, error)
	List(filter SearchFilter) ([]*Quote, error)
	Update(id int64, update QuoteUpdate) (*Quote, error)
	Delete(id int64) error

	// Count and GetByOffset support uniform random selection: Count
	// returns the catalog cardinality, GetByOffset the quote at ordinal
	// position k under id-ascending order.
	Count() (int64, error)
	GetByOffset(k int64) (*Quote, error)
}
