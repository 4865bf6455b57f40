package pagination

// Ticket identifies one dispatched page request.
type Ticket struct {
	Generation uint64
	Init       bool
	Cursor     string
}

// Coordinator tracks the continuation cursor and loading flags of a channel list.
// Every fresh request starts a new generation; responses from older generations
// are stale and must be dropped by the caller. Not safe for concurrent use.
type Coordinator struct {
	cursor       string
	fetching     bool
	fetchingMore bool
	generation   uint64
}

func New() *Coordinator {
	return &Coordinator{}
}

func (c *Coordinator) Cursor() string       { return c.cursor }
func (c *Coordinator) HasMore() bool        { return c.cursor != "" }
func (c *Coordinator) IsFetching() bool     { return c.fetching }
func (c *Coordinator) IsFetchingMore() bool { return c.fetchingMore }

// BeginFresh supersedes every request in flight, including continuations.
func (c *Coordinator) BeginFresh() Ticket {
	c.generation++
	c.fetching = true
	c.fetchingMore = false
	return Ticket{Generation: c.generation, Init: true}
}

// BeginMore returns false while a request is in flight or when no page is left.
func (c *Coordinator) BeginMore() (Ticket, bool) {
	if c.fetching || c.fetchingMore || c.cursor == "" {
		return Ticket{}, false
	}
	c.fetchingMore = true
	return Ticket{Generation: c.generation, Cursor: c.cursor}, true
}

func (c *Coordinator) IsCurrent(t Ticket) bool {
	return t.Generation == c.generation
}

func (c *Coordinator) Resolve(t Ticket, next string) bool {
	if !c.IsCurrent(t) {
		return false
	}
	if t.Init {
		c.fetching = false
	} else {
		c.fetchingMore = false
	}
	c.cursor = next
	return true
}

// Fail clears the flag of a current request. A failed fresh request leaves no
// cursor behind; a failed continuation keeps its cursor so it can be retried.
func (c *Coordinator) Fail(t Ticket) bool {
	if !c.IsCurrent(t) {
		return false
	}
	if t.Init {
		c.fetching = false
		c.cursor = ""
	} else {
		c.fetchingMore = false
	}
	return true
}

// Reset invalidates everything in flight and forgets the cursor.
func (c *Coordinator) Reset() {
	c.generation++
	c.cursor = ""
	c.fetching = false
	c.fetchingMore = false
}
