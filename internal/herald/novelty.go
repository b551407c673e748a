package herald

import "log/slog"

// SelectNew computes the announcements from batch that have not been delivered
// yet, in delivery order (oldest first). The batch is expected newest-first,
// as the feed returns it.
//
// On a cold start (empty state) nothing is selected: the caller should advance
// the watermark to the newest batch entry instead of flood-publishing the
// entire backlog.
//
// The scan walks the batch until it reaches the watermark GID. When the
// watermark has rotated out of the feed's retention window entirely, the whole
// batch is a catch-up backlog: emission is capped at burstMax oldest-first and
// catchUp is reported true so the caller can warn. The remainder stays novel
// for the next cycle.
//
// SelectNew is pure: it never mutates batch or state, and repeated calls with
// the same inputs yield the same output.
func SelectNew(batch []Announcement, state SeenState, burstMax int) (novel []Announcement, catchUp bool) {
	if len(batch) == 0 || state.Empty() {
		return nil, false
	}

	seen := state.WindowSet()
	inBatch := make(map[string]bool, len(batch))
	var collected []Announcement
	boundaryFound := false

	for _, a := range batch {
		if a.GID == state.LastGID {
			boundaryFound = true
			break
		}
		if inBatch[a.GID] {
			// Feed handed us the same announcement twice in one page.
			slog.Warn("duplicate GID within one batch", "gid", a.GID)
			continue
		}
		inBatch[a.GID] = true

		if _, ok := seen[a.GID]; ok {
			continue
		}
		if a.PostedAt < state.LastPostedAt {
			continue
		}
		collected = append(collected, a)
	}

	// Newest-first collection becomes oldest-first delivery.
	reverse(collected)

	if !boundaryFound {
		catchUp = true
		if burstMax > 0 && len(collected) > burstMax {
			collected = collected[:burstMax]
		}
	}

	return collected, catchUp
}

func reverse(a []Announcement) {
	for i, j := 0, len(a)-1; i < j; i, j = i+1, j-1 {
		a[i], a[j] = a[j], a[i]
	}
}
