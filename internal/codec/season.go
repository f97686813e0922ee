package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/steph-crown/movie-moments/internal/models"
)

// seasonDelimiter joins the four descriptor fields. Season names must not
// contain it; callers own that constraint, nothing is escaped.
const seasonDelimiter = "|"

var ErrMalformedToken = errors.New("malformed season token")

// EncodeSeason flattens a descriptor into a token that DecodeSeason accepts.
func EncodeSeason(d models.SeasonDescriptor) string {
	return fmt.Sprintf("%d%s%s%s%d%s%d",
		d.Number, seasonDelimiter,
		d.Name, seasonDelimiter,
		d.ID, seasonDelimiter,
		d.EpisodeCount,
	)
}

// DecodeSeason parses a token produced by EncodeSeason. Anything that does
// not split into exactly four fields fails with ErrMalformedToken.
func DecodeSeason(token string) (models.SeasonDescriptor, error) {
	parts := strings.Split(token, seasonDelimiter)
	if len(parts) != 4 {
		return models.SeasonDescriptor{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}

	number, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.SeasonDescriptor{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	id, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.SeasonDescriptor{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}
	count, err := strconv.Atoi(parts[3])
	if err != nil {
		return models.SeasonDescriptor{}, fmt.Errorf("%w: %q", ErrMalformedToken, token)
	}

	return models.SeasonDescriptor{
		Number:       number,
		Name:         parts[1],
		ID:           id,
		EpisodeCount: count,
	}, nil
}

// ParseSeasonToken resolves a token once at ingestion. Legacy tokens are bare
// season numbers, so a failed decode falls back to treating the raw token as
// one; a token that is not even an integer maps to season 1.
func ParseSeasonToken(token string) models.SeasonDescriptor {
	if d, err := DecodeSeason(token); err == nil {
		return d
	}

	number, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || number < 1 {
		number = 1
	}

	return models.SeasonDescriptor{
		Number: number,
		Name:   token,
	}
}
