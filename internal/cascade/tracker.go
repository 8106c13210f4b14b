package cascade

// entityKind distinguishes the guarded record types.
type entityKind string

const (
	kindHolder        entityKind = "holder"
	kindAuthorization entityKind = "authorization"
)

type guardKey struct {
	kind entityKind
	id   string
}

// tracker marks records currently being deleted inside one cascade operation
// so the holder and authorization legs never re-enter each other. Each
// operation owns its own tracker; nothing is shared across requests.
type tracker struct {
	inFlight map[guardKey]struct{}
}

func newTracker() *tracker {
	return &tracker{inFlight: make(map[guardKey]struct{})}
}

func (t *tracker) guarded(kind entityKind, id string) bool {
	_, ok := t.inFlight[guardKey{kind: kind, id: id}]
	return ok
}

func (t *tracker) guard(kind entityKind, id string) {
	t.inFlight[guardKey{kind: kind, id: id}] = struct{}{}
}

func (t *tracker) unguard(kind entityKind, id string) {
	delete(t.inFlight, guardKey{kind: kind, id: id})
}
