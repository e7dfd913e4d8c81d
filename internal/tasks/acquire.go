package tasks

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/desertthunder/wxfm/internal/models"
	"github.com/desertthunder/wxfm/internal/mood"
	"github.com/desertthunder/wxfm/internal/services"
	"github.com/desertthunder/wxfm/internal/shared"
)

const (
	// searchPageSize is the per-seed page size for the fallback search.
	searchPageSize = 25
	// searchMaxOffset bounds the random page offset, keeping fallback
	// pools varied between runs.
	searchMaxOffset = 50
)

// AcquireOutcome carries the track pool assembled for a run, the seeds
// that produced it, and how it was obtained. A recommendation failure
// is recorded here rather than ending the run, since the genre search
// can still serve a pool.
type AcquireOutcome struct {
	Tracks       []models.Track
	Seeds        []string
	UsedFallback bool
	PrimaryErr   error
}

// Acquire assembles the run's track pool from the mood profile.
//
// The recommendation endpoint is tried first with the sanitized seeds
// and the mood's audio feature ranges. When it fails or returns
// nothing, each seed is searched as a genre filter instead. Either way
// the pool is ranked by popularity, deduplicated by artist lineup,
// shuffled, and cut to limit.
func (e *PipelineEngine) Acquire(ctx context.Context, profile models.Mood, limit int, progress chan<- ProgressUpdate) (*AcquireOutcome, error) {
	seeds := mood.Sanitize(profile.Genres)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: mood %s", shared.ErrNoSeeds, profile.Name)
	}

	outcome := &AcquireOutcome{Seeds: seeds}
	e.sendProgress(progress, acquireUpdate(4, totalSteps, seeds))

	params := services.RecommendationParams{
		Seeds:      seeds,
		Limit:      clampLimit(limit * 2),
		Market:     e.market,
		MinEnergy:  profile.Energy.Min,
		MaxEnergy:  profile.Energy.Max,
		MinValence: profile.Valence.Min,
		MaxValence: profile.Valence.Max,
		MinTempo:   profile.Tempo.Min,
		MaxTempo:   profile.Tempo.Max,
	}

	recommended, err := e.music.Recommendations(ctx, params)
	if err != nil {
		outcome.PrimaryErr = err
		e.metrics.RecommendationFailures.Inc()
		e.logger.Warn("recommendations failed, falling back to genre search", "error", err)
	}

	if len(recommended) > 0 {
		outcome.Tracks = rankAndSample(recommended, limit, e.rng)
		e.sendProgress(progress, poolUpdate(4, totalSteps, outcome))
		return outcome, nil
	}

	outcome.UsedFallback = true
	e.sendProgress(progress, fallbackUpdate(4, totalSteps, outcome.PrimaryErr))

	collected := make([]models.Track, 0, limit*3)
	for _, seed := range seeds {
		query := fmt.Sprintf("genre:%q", seed)
		found, err := e.music.SearchTracks(ctx, query, searchPageSize, e.rng.Intn(searchMaxOffset+1))
		if err != nil {
			// One bad seed should not sink the pool.
			e.metrics.MusicFailures.Inc()
			e.logger.Warn("genre search failed, skipping seed", "seed", seed, "error", err)
			continue
		}

		collected = append(collected, found...)
		if len(collected) >= limit*3 {
			break
		}
	}

	if len(collected) == 0 && ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
	}

	outcome.Tracks = rankAndSample(collected, limit, e.rng)
	e.sendProgress(progress, poolUpdate(4, totalSteps, outcome))
	return outcome, nil
}

// clampLimit bounds a recommendation request size to the API's 1-100
// window, asking for at least 10 so small track counts still get a
// pool worth deduplicating.
func clampLimit(limit int) int {
	if limit < 10 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// rankAndSample orders tracks by descending popularity, keeps the
// first track seen per artist lineup, shuffles the survivors, and cuts
// the pool to limit.
func rankAndSample(tracks []models.Track, limit int, rng *rand.Rand) []models.Track {
	pool := dedupeByArtists(sortByPopularity(tracks))

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// sortByPopularity returns a copy sorted by descending popularity.
// The sort is stable so ties keep the service's ordering.
func sortByPopularity(tracks []models.Track) []models.Track {
	sorted := append([]models.Track(nil), tracks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity > sorted[j].Popularity
	})
	return sorted
}

// dedupeByArtists keeps the first track seen per ordered artist-ID
// tuple. Run on a popularity-sorted slice this keeps each lineup's
// most popular track.
func dedupeByArtists(tracks []models.Track) []models.Track {
	seen := make(map[string]bool, len(tracks))
	pool := make([]models.Track, 0, len(tracks))

	for _, track := range tracks {
		key := track.ArtistKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, track)
	}

	return pool
}
