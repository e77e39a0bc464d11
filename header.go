package chess

// Well known tag names.
const (
	TagEvent     = "Event"
	TagSite      = "Site"
	TagDate      = "Date"
	TagRound     = "Round"
	TagWhite     = "White"
	TagBlack     = "Black"
	TagResult    = "Result"
	TagAnnotator = "Annotator"
	TagSetUp     = "SetUp"
	TagFEN       = "FEN"
)

// TagPair is a single PGN tag.
type TagPair struct {
	Key   string
	Value string
}

// Header is the tag section of a game. Tags keep their insertion order and a
// name may occur more than once.
type Header struct {
	pairs []TagPair
	index map[string][]int
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{index: make(map[string][]int)}
}

// Add appends a tag, keeping earlier tags with the same name.
func (h *Header) Add(key, value string) {
	if h.index == nil {
		h.index = make(map[string][]int)
	}
	h.index[key] = append(h.index[key], len(h.pairs))
	h.pairs = append(h.pairs, TagPair{Key: key, Value: value})
}

// Set stores value under key and returns true if a value was overwritten.
// Duplicates of key collapse into the first occurrence.
func (h *Header) Set(key, value string) bool {
	positions := h.index[key]
	if len(positions) == 0 {
		h.Add(key, value)
		return false
	}
	h.pairs[positions[0]].Value = value
	if len(positions) > 1 {
		drop := make(map[int]bool, len(positions)-1)
		for _, i := range positions[1:] {
			drop[i] = true
		}
		h.filter(func(i int, _ TagPair) bool { return !drop[i] })
	}
	return true
}

// Get returns the most recently added value for key or "" if it is not present.
func (h *Header) Get(key string) string {
	positions := h.index[key]
	if len(positions) == 0 {
		return ""
	}
	return h.pairs[positions[len(positions)-1]].Value
}

// Lookup is like Get but also reports whether key is present.
func (h *Header) Lookup(key string) (string, bool) {
	if !h.Has(key) {
		return "", false
	}
	return h.Get(key), true
}

// Values returns every value stored under key in insertion order.
func (h *Header) Values(key string) []string {
	positions := h.index[key]
	values := make([]string, 0, len(positions))
	for _, i := range positions {
		values = append(values, h.pairs[i].Value)
	}
	return values
}

// Has returns true if key is present.
func (h *Header) Has(key string) bool {
	return len(h.index[key]) > 0
}

// Delete removes every occurrence of key and returns true if any was removed.
func (h *Header) Delete(key string) bool {
	if !h.Has(key) {
		return false
	}
	h.filter(func(_ int, p TagPair) bool { return p.Key != key })
	return true
}

// Len returns the number of tags, duplicates included.
func (h *Header) Len() int {
	return len(h.pairs)
}

// Pairs returns a copy of the tags in insertion order.
func (h *Header) Pairs() []TagPair {
	return append([]TagPair(nil), h.pairs...)
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	c := NewHeader()
	for _, p := range h.pairs {
		c.Add(p.Key, p.Value)
	}
	return c
}

func (h *Header) filter(keep func(int, TagPair) bool) {
	pairs := h.pairs
	h.pairs = nil
	h.index = make(map[string][]int)
	for i, p := range pairs {
		if keep(i, p) {
			h.Add(p.Key, p.Value)
		}
	}
}
