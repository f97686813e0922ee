// Package progress orders viewing positions within one content item and
// derives per-room ahead/behind/in-sync statistics from them.
package progress

import (
	"github.com/steph-crown/movie-moments/internal/codec"
	"github.com/steph-crown/movie-moments/internal/models"
)

const (
	// SpoilerBufferSeconds is the grace window before a position further
	// along than the viewer counts as a spoiler.
	SpoilerBufferSeconds = 60

	// SyncWindowSeconds is how far apart two timestamps may be while the
	// participants still count as watching together.
	SyncWindowSeconds = 300

	// seasonWeight makes season dominate episode in the scalar score.
	seasonWeight = 10000
)

// Score collapses a position into a single comparable number. Movies score by
// raw seconds. Series score season and episode with the in-episode timestamp
// as a fractional tiebreak; episodes running past an hour overflow the
// tiebreak into the next episode's range. That is a known approximation kept
// as-is, not a bug to fix here.
func Score(p models.Position, ct models.ContentType) float64 {
	if ct == models.ContentTypeMovie {
		return float64(p.TimestampSeconds)
	}

	season := seasonNumber(p)
	episode := p.EpisodeOrDefault()
	return float64(season)*seasonWeight + float64(episode) + float64(p.TimestampSeconds)/3600
}

// IsSpoiler reports whether candidate is far enough ahead of viewer that
// content attributed to it would spoil the viewer. A candidate without any
// position data never spoils. Self-authored messages are exempted by the
// caller, which knows the author.
func IsSpoiler(candidate, viewer models.Position, ct models.ContentType) bool {
	if !candidate.HasData() {
		return false
	}

	if ct == models.ContentTypeMovie {
		return candidate.TimestampSeconds > viewer.TimestampSeconds+SpoilerBufferSeconds
	}

	candidateSeason, viewerSeason := seasonNumber(candidate), seasonNumber(viewer)
	if candidateSeason != viewerSeason {
		return candidateSeason > viewerSeason
	}

	candidateEpisode, viewerEpisode := candidate.EpisodeOrDefault(), viewer.EpisodeOrDefault()
	if candidateEpisode != viewerEpisode {
		return candidateEpisode > viewerEpisode
	}

	return candidate.TimestampSeconds > viewer.TimestampSeconds+SpoilerBufferSeconds
}

// seasonNumber resolves the season for comparison, defaulting to 1 when the
// token is absent or unreadable.
func seasonNumber(p models.Position) int {
	if p.SeasonToken == nil {
		return 1
	}
	return codec.ParseSeasonToken(*p.SeasonToken).Number
}
