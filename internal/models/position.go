package models

// ContentType distinguishes how positions are ordered: movies by raw
// timestamp, series by season/episode with the timestamp as a tiebreak.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// Position is a participant's current place in the content. SeasonToken and
// Episode are only meaningful for series; a nil SeasonToken means the season
// is unknown.
type Position struct {
	SeasonToken      *string `json:"season_token,omitempty"`
	Episode          *int    `json:"episode,omitempty"`
	TimestampSeconds int     `json:"timestamp_seconds"`
}

// HasData reports whether the position carries any information at all.
// Positions with no data are skipped by aggregation and never treated as
// spoilers.
func (p Position) HasData() bool {
	return p.SeasonToken != nil || p.Episode != nil || p.TimestampSeconds > 0
}

// EpisodeOrDefault returns the episode number, defaulting to 1 when absent.
func (p Position) EpisodeOrDefault() int {
	if p.Episode == nil || *p.Episode < 1 {
		return 1
	}
	return *p.Episode
}

// SeasonDescriptor is the decoded form of a season token.
type SeasonDescriptor struct {
	Number       int    `json:"number"`
	Name         string `json:"name"`
	ID           int    `json:"id"`
	EpisodeCount int    `json:"episode_count"`
}

// PositionStats is derived per room and viewer, never stored.
type PositionStats struct {
	InSync int `json:"in_sync"`
	Behind int `json:"behind"`
	Ahead  int `json:"ahead"`
}
