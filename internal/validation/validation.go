package validation

import (
	"fmt"
	"regexp"
	"time"
)

// ClubIDPattern определяет допустимый формат club id
// Только латинские буквы (a-z, A-Z), цифры (0-9), дефис (-), нижнее подчеркивание (_)
// Длина: 1-64 символа
var ClubIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// DateLayout формат даты сессии
const DateLayout = "2006-01-02"

// ValidateClubID проверяет, что club id соответствует требованиям.
// Id уходит в заголовок X-Club-ID и в SQL-запросы области видимости,
// поэтому формат жёсткий.
func ValidateClubID(clubID string) error {
	if clubID == "" {
		return fmt.Errorf("club id cannot be empty")
	}

	if !ClubIDPattern.MatchString(clubID) {
		return fmt.Errorf("club id can only contain letters (a-z, A-Z), numbers (0-9), hyphens (-), and underscores (_), up to 64 characters")
	}

	return nil
}

// ValidateDate проверяет, что дата сессии записана как YYYY-MM-DD и
// является существующим календарным днём.
func ValidateDate(date string) error {
	if date == "" {
		return fmt.Errorf("date cannot be empty")
	}

	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("date must be a valid YYYY-MM-DD day")
	}

	// time.Parse принимает "2026-3-01"; требуем каноническую запись
	if parsed.Format(DateLayout) != date {
		return fmt.Errorf("date must be written as YYYY-MM-DD")
	}

	return nil
}
