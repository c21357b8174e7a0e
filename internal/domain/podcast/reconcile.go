package podcast

// Reconcile returns the live episodes whose title matches no stored episode,
// in live order, together with their count.
func Reconcile(stored, live []Episode) ([]Episode, int) {
	return ReconcileBy(TitleKey, stored, live)
}

// ReconcileBy is Reconcile with a caller-supplied identity.
// Every live episode is compared against every stored one; feeds are small
// enough that no index is built.
func ReconcileBy(key KeyFunc, stored, live []Episode) ([]Episode, int) {
	if key == nil {
		key = TitleKey
	}
	var fresh []Episode
	for _, candidate := range live {
		id := key(candidate)
		known := false
		for _, existing := range stored {
			if key(existing) == id {
				known = true
				break
			}
		}
		if !known {
			fresh = append(fresh, candidate)
		}
	}
	return fresh, len(fresh)
}

// Merge appends fresh episodes to p, keeping oldest-first order.
func (p *Podcast) Merge(fresh []Episode) {
	if p == nil || len(fresh) == 0 {
		return
	}
	p.Episodes = append(p.Episodes, fresh...)
}
