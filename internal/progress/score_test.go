package progress

import (
	"testing"

	"github.com/steph-crown/movie-moments/internal/codec"
	"github.com/steph-crown/movie-moments/internal/models"
)

func seriesPos(season, episode int, timestamp string) models.Position {
	token := codec.EncodeSeason(models.SeasonDescriptor{Number: season, Name: "Season", ID: season, EpisodeCount: 10})
	return models.Position{
		SeasonToken:      &token,
		Episode:          &episode,
		TimestampSeconds: codec.TimestampToSeconds(timestamp),
	}
}

func moviePos(timestamp string) models.Position {
	return models.Position{TimestampSeconds: codec.TimestampToSeconds(timestamp)}
}

func TestScoreMovie(t *testing.T) {
	if got := Score(moviePos("1:30:00"), models.ContentTypeMovie); got != 5400 {
		t.Errorf("Score = %v, want 5400", got)
	}
}

func TestScoreSeriesOrdering(t *testing.T) {
	ct := models.ContentTypeSeries

	later := []models.Position{
		seriesPos(1, 3, "10:00"),
		seriesPos(1, 3, "40:00"),
		seriesPos(1, 4, "0:00"),
		seriesPos(2, 1, "0:00"),
	}
	for i := 1; i < len(later); i++ {
		if Score(later[i], ct) <= Score(later[i-1], ct) {
			t.Errorf("expected %+v to score above %+v", later[i], later[i-1])
		}
	}
}

func TestIsSpoilerMovie(t *testing.T) {
	viewer := moviePos("30:00")

	tests := []struct {
		candidate string
		want      bool
	}{
		{"29:00", false},
		{"30:00", false},
		{"31:00", false}, // exactly the 60s buffer
		{"31:01", true},
		{"1:00:00", true},
	}

	for _, tt := range tests {
		if got := IsSpoiler(moviePos(tt.candidate), viewer, models.ContentTypeMovie); got != tt.want {
			t.Errorf("IsSpoiler(%s vs 30:00) = %v, want %v", tt.candidate, got, tt.want)
		}
	}
}

func TestIsSpoilerSeries(t *testing.T) {
	viewer := seriesPos(1, 3, "10:00")
	ct := models.ContentTypeSeries

	tests := []struct {
		name      string
		candidate models.Position
		want      bool
	}{
		{"next episode start", seriesPos(1, 4, "0:00"), true},
		{"earlier in same episode", seriesPos(1, 3, "9:00"), false},
		{"past buffer in same episode", seriesPos(1, 3, "11:05"), true},
		{"within buffer in same episode", seriesPos(1, 3, "10:30"), false},
		{"next season", seriesPos(2, 1, "0:00"), true},
		{"previous episode", seriesPos(1, 2, "50:00"), false},
	}

	for _, tt := range tests {
		if got := IsSpoiler(tt.candidate, viewer, ct); got != tt.want {
			t.Errorf("%s: IsSpoiler = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsSpoilerNoData(t *testing.T) {
	if IsSpoiler(models.Position{}, moviePos("5:00"), models.ContentTypeMovie) {
		t.Error("position without data must never be a spoiler")
	}
}

func TestIsSpoilerDefaultsMissingSeasonAndEpisode(t *testing.T) {
	// Missing season/episode on either side is read as season 1, episode 1.
	bare := models.Position{TimestampSeconds: codec.TimestampToSeconds("5:00")}
	viewer := seriesPos(1, 1, "10:00")

	if IsSpoiler(bare, viewer, models.ContentTypeSeries) {
		t.Error("bare position behind the viewer in s1e1 must not spoil")
	}
	if !IsSpoiler(seriesPos(1, 2, "0:00"), bare, models.ContentTypeSeries) {
		t.Error("episode 2 must spoil a bare position defaulted to s1e1")
	}
}

func TestIsSpoilerLegacySeasonToken(t *testing.T) {
	// Legacy tokens are bare integers and still order correctly.
	legacy := "3"
	episode := 1
	candidate := models.Position{SeasonToken: &legacy, Episode: &episode}

	if !IsSpoiler(candidate, seriesPos(2, 9, "59:00"), models.ContentTypeSeries) {
		t.Error("legacy season 3 must spoil a season 2 viewer")
	}
}
