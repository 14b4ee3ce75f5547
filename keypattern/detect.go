package keypattern

// Match is a successful pattern decision.
type Match struct {
	Detector *Detector
	Body     string
	Comment  string
}

func matchOf(d *Detector) *Match {
	return &Match{Detector: d, Body: d.body, Comment: d.Comment}
}

// minKeys is the smallest non-empty key set eligible for pattern collapse.
// Anything smaller stays a conventional properties object.
const minKeys = 3

// DetectWithRejects finds the highest priority detector that matches every
// non-empty key, skipping bodies listed in exclude. The second result holds
// the bodies of every detector that either failed on some key or was
// excluded; callers blacklist those so that later, larger samples at the
// same path cannot revive an already falsified pattern.
//
// A detector that matched but vetoed conversion is never rejected. When its
// deferral target turns out to be unavailable the vetoed detector still
// wins; without that fallback the outcome would depend on the order in which
// samples arrived at a path.
func DetectWithRejects(keys []string, exclude map[string]struct{}) (*Match, map[string]struct{}) {
	rejected := make(map[string]struct{})

	nonEmpty := keys[:0:0]
	for _, k := range keys {
		if k != "" {
			nonEmpty = append(nonEmpty, k)
		}
	}
	if len(nonEmpty) < minKeys {
		return nil, rejected
	}

	var best, vetoed *Detector
	for _, d := range detectors {
		if _, in := exclude[d.body]; in {
			rejected[d.body] = struct{}{}
			continue
		}

		all := true
		for _, k := range nonEmpty {
			if !d.Matches(k) {
				all = false
				break
			}
		}
		if !all {
			rejected[d.body] = struct{}{}
			continue
		}
		if !d.ShouldConvert(nonEmpty) {
			if vetoed == nil || d.Priority > vetoed.Priority {
				vetoed = d
			}
			continue
		}
		if best == nil || d.Priority > best.Priority {
			best = d
		}
	}

	if best == nil {
		best = vetoed
	}
	if best == nil {
		return nil, rejected
	}
	return matchOf(best), rejected
}

// Detect is DetectWithRejects without the rejects channel.
func Detect(keys []string, exclude map[string]struct{}) *Match {
	m, _ := DetectWithRejects(keys, exclude)
	return m
}

// BestForBodies unifies several already decided pattern bodies, as found in
// independently built schema fragments, into a single detector compatible
// with all of them. Compatibility is checked against each source detector's
// representative examples. Returns nil when any body is unknown or no
// non-blacklisted detector covers the union.
func BestForBodies(bodies []string, blacklist map[string]struct{}) *Match {
	if len(bodies) == 0 {
		return nil
	}

	var examples []string
	for _, body := range bodies {
		d := ForBody(body)
		if d == nil {
			return nil
		}
		examples = append(examples, d.examples...)
	}

	var best, vetoed *Detector
	for _, d := range detectors {
		if _, in := blacklist[d.body]; in {
			continue
		}

		all := true
		for _, ex := range examples {
			if !d.Matches(ex) {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		if !d.ShouldConvert(examples) {
			if vetoed == nil || d.Priority > vetoed.Priority {
				vetoed = d
			}
			continue
		}
		if best == nil || d.Priority > best.Priority {
			best = d
		}
	}

	if best == nil {
		best = vetoed
	}
	if best == nil {
		return nil
	}
	return matchOf(best)
}
