package domain

// HistoryLimit is how many practiced letters are retained locally.
const HistoryLimit = 8

// HistorySendLimit is how many recent letters are sent to the policy
// service with a recommendation request.
const HistorySendLimit = 5

// RecentHistory is an ordered, bounded log of the last letters practiced.
// Append-only; the oldest entries are dropped once the limit is exceeded.
type RecentHistory []Letter

// Append records a practiced letter, truncating from the front when the
// history exceeds HistoryLimit.
func (h *RecentHistory) Append(l Letter) {
	*h = append(*h, l)
	if n := len(*h); n > HistoryLimit {
		*h = (*h)[n-HistoryLimit:]
	}
}

// Recent returns the most recent n entries, oldest first. The returned
// slice is a copy.
func (h RecentHistory) Recent(n int) []Letter {
	if n > len(h) {
		n = len(h)
	}
	out := make([]Letter, n)
	copy(out, h[len(h)-n:])
	return out
}
