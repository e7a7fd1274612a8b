package cli

import (
	"fmt"
	"strings"

	"github.com/iudanet/matchday/internal/models"
)

func parseHalf(s string) (models.Half, error) {
	switch s {
	case "1":
		return models.FirstHalf, nil
	case "2":
		return models.SecondHalf, nil
	default:
		return 0, fmt.Errorf("invalid half %q: use 1 or 2", s)
	}
}

func parseTeam(s string) (models.Team, error) {
	switch strings.ToUpper(s) {
	case "A":
		return models.TeamA, nil
	case "B":
		return models.TeamB, nil
	default:
		return "", fmt.Errorf("invalid team %q: use A or B", s)
	}
}
