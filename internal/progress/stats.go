package progress

import "github.com/steph-crown/movie-moments/internal/models"

// ComputeStats classifies every other joined participant as behind, ahead,
// or in sync relative to the viewer. The viewer's own row is filtered out
// before aggregation, and participants with no position data are skipped.
func ComputeStats(viewerID string, viewer models.Position, participants []models.Participant, ct models.ContentType) models.PositionStats {
	var stats models.PositionStats

	for i := range participants {
		p := &participants[i]
		if p.UserID == viewerID || !p.Position.HasData() {
			continue
		}

		switch classify(p.Position, viewer, ct) {
		case 0:
			stats.InSync++
		case 1:
			stats.Ahead++
		case -1:
			stats.Behind++
		}
	}

	return stats
}

// classify returns -1 (behind), 0 (in sync) or 1 (ahead) for candidate
// relative to viewer. For series, the sync window only applies once season
// and episode match; across episodes the ordering is purely by score.
func classify(candidate, viewer models.Position, ct models.ContentType) int {
	if ct == models.ContentTypeMovie {
		diff := candidate.TimestampSeconds - viewer.TimestampSeconds
		switch {
		case diff > SyncWindowSeconds:
			return 1
		case diff < -SyncWindowSeconds:
			return -1
		default:
			return 0
		}
	}

	candidateSeason, viewerSeason := seasonNumber(candidate), seasonNumber(viewer)
	candidateEpisode, viewerEpisode := candidate.EpisodeOrDefault(), viewer.EpisodeOrDefault()

	if candidateSeason == viewerSeason && candidateEpisode == viewerEpisode {
		diff := candidate.TimestampSeconds - viewer.TimestampSeconds
		switch {
		case diff > SyncWindowSeconds:
			return 1
		case diff < -SyncWindowSeconds:
			return -1
		default:
			return 0
		}
	}

	if Score(candidate, ct) > Score(viewer, ct) {
		return 1
	}
	return -1
}
