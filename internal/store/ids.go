package store

import (
	"strconv"
	"time"
)

// idSource issues "<prefix>-<unix millis>" ids. Within one prefix the
// millisecond part never repeats or goes backwards, and ids already taken are
// skipped.
type idSource struct {
	now  func() time.Time
	last map[string]int64
}

func newIDSource(now func() time.Time) *idSource {
	return &idSource{now: now, last: make(map[string]int64)}
}

func (g *idSource) next(prefix string, taken func(string) bool) string {
	ms := g.now().UnixMilli()
	if last, ok := g.last[prefix]; ok && ms <= last {
		ms = last + 1
	}
	id := prefix + "-" + strconv.FormatInt(ms, 10)
	for taken != nil && taken(id) {
		ms++
		id = prefix + "-" + strconv.FormatInt(ms, 10)
	}
	g.last[prefix] = ms
	return id
}
