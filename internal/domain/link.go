package domain

import (
	"sort"
	"time"
)

// ReferencedLink is an edge from an issue to some target: the target itself,
// the user who created the reference, and when the reference happened.
// The same shape is used for comments, related issues, and related commits.
type ReferencedLink[T any] struct {
	Target       T
	User         User
	ReferencedAt time.Time
}

// sortLinksByTime orders links ascending by their reference timestamp.
// The sort is stable so links sharing a timestamp keep their arrival order.
func sortLinksByTime[T any](links []ReferencedLink[T]) {
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].ReferencedAt.Before(links[j].ReferencedAt)
	})
}

// sortEventsByTime orders timeline events ascending by creation time.
func sortEventsByTime(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

// sortReviewsByTime orders reviews ascending by submission time.
func sortReviewsByTime(reviews []Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].SubmittedAt.Before(reviews[j].SubmittedAt)
	})
}

// dedupLinks removes structurally equal links, keeping the first occurrence.
// Two links are equal when their key, user, and timestamp all match; identity
// of the target value plays no role.
func dedupLinks[T any](links []ReferencedLink[T], key func(T) string) []ReferencedLink[T] {
	type linkKey struct {
		target string
		login  string
		at     time.Time
	}

	seen := make(map[linkKey]struct{}, len(links))
	out := links[:0]
	for _, l := range links {
		k := linkKey{target: key(l.Target), login: l.User.Login, at: l.ReferencedAt}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
