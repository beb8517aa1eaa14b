package resolver

import "github.com/aretw0/stateline/pkg/domain"

// Segments partitions a chain into maximal contiguous runs of steps that
// share a canonical platform. A segment is complete iff every step in it is
// complete and no unresolved entity-scoped requirement belongs to one of
// its entities.
func Segments(chain domain.Chain) []domain.Segment {
	if len(chain) == 0 {
		return nil
	}

	pendingEntities := make(map[string]bool)
	for _, step := range chain {
		if step.Entity != "" && !step.Complete {
			pendingEntities[step.Entity] = true
		}
	}

	var segments []domain.Segment
	current := domain.Segment{
		Platform: domain.CanonicalPlatform(chain[0].Platform),
	}
	for _, step := range chain {
		canon := domain.CanonicalPlatform(step.Platform)
		if canon != current.Platform && len(current.Steps) > 0 {
			segments = append(segments, finish(current, pendingEntities))
			current = domain.Segment{Platform: canon}
		}
		current.Steps = append(current.Steps, step)
	}
	segments = append(segments, finish(current, pendingEntities))
	return segments
}

// FirstIncomplete returns the first segment with pending work, or nil when
// the whole chain is ready.
func FirstIncomplete(segments []domain.Segment) *domain.Segment {
	for i := range segments {
		if !segments[i].Complete {
			return &segments[i]
		}
	}
	return nil
}

func finish(seg domain.Segment, pendingEntities map[string]bool) domain.Segment {
	seg.Complete = true
	for _, step := range seg.Steps {
		if !step.Complete {
			seg.Complete = false
			break
		}
	}
	if seg.Complete {
		for _, step := range seg.Steps {
			if step.Entity != "" && pendingEntities[step.Entity] {
				seg.Complete = false
				break
			}
		}
	}
	return seg
}
