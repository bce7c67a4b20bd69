package services

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AggregateResult is the per-window engagement reduction for one platform.
// ByUsername counts distinct posts a username engaged with, Total is the sum
// of the per-post set sizes, Failed counts posts whose engagement lookup
// failed (best-effort, never fatal).
type AggregateResult struct {
	Total      int
	ByUsername map[string]int
	PostCount  int
	Failed     int
	FromCache  bool
	// FellBack is set when the empty role-filtered aggregate was retried
	// with a plain unit match.
	FellBack bool
}

// Aggregator computes per-username engagement counts over the posts of a
// resolved scope and window. Safe for concurrent use.
type Aggregator struct {
	Posts       PostStore
	Engagements EngagementStore
	Workers     int
}

const defaultAggregatorWorkers = 4

// Aggregate lists the posts in scope and fans out their engagement-set
// lookups over a bounded worker pool. When the role-filtered variant comes
// back empty for a directorate unit it retries exactly once without the role
// filter (posts left untagged still belong to the directorate's unit id).
func (a *Aggregator) Aggregate(ctx context.Context, platform string, scope ResolvedScope, window TimeRange) (AggregateResult, error) {
	result, err := a.aggregateOnce(ctx, platform, scope.Spec, window)
	if err != nil {
		return result, err
	}
	if result.PostCount == 0 && scope.Spec.Kind == ByUnitAndRole && scope.UnitType == UnitTypeDirektorat {
		fallback := scope.Spec
		fallback.Kind = ByUnit
		fallback.Role = ""
		retried, err := a.aggregateOnce(ctx, platform, fallback, window)
		if err != nil {
			return retried, err
		}
		retried.FellBack = true
		return retried, nil
	}
	return result, nil
}

func (a *Aggregator) aggregateOnce(ctx context.Context, platform string, spec QuerySpec, window TimeRange) (AggregateResult, error) {
	posts, err := a.Posts.ListPostsInWindow(ctx, platform, spec, window)
	if err != nil {
		return AggregateResult{ByUsername: map[string]int{}}, WrapError(err, "list posts")
	}

	result := AggregateResult{
		ByUsername: map[string]int{},
		PostCount:  len(posts),
	}
	if len(posts) == 0 {
		return result, nil
	}

	workers := a.Workers
	if workers <= 0 {
		workers = defaultAggregatorWorkers
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, post := range posts {
		post := post
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			raw, err := a.Engagements.GetEngagementSet(groupCtx, platform, post.ID)
			if err != nil {
				log.Printf("aggregate: engagement lookup failed for %s/%s: %v", platform, post.ID, err)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}
			engaged := distinctUsernames(raw)
			mu.Lock()
			result.Total += len(engaged)
			for username := range engaged {
				result.ByUsername[username]++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// distinctUsernames reduces a raw engagement set to normalized unique
// usernames, so a username is counted once per post however many times the
// stored set repeats it.
func distinctUsernames(raw []interface{}) map[string]bool {
	engaged := make(map[string]bool, len(raw))
	for _, entry := range raw {
		if username := ExtractUsername(entry); username != "" {
			engaged[username] = true
		}
	}
	return engaged
}
