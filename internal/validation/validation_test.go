package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClubID(t *testing.T) {
	tests := []struct {
		name    string
		clubID  string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid club id - lowercase",
			clubID:  "redstars",
			wantErr: false,
		},
		{
			name:    "valid club id - mixed",
			clubID:  "Red_Stars-2026",
			wantErr: false,
		},
		{
			name:    "valid club id - single char",
			clubID:  "x",
			wantErr: false,
		},
		{
			name:    "empty club id",
			clubID:  "",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		{
			name:    "club id with spaces",
			clubID:  "red stars",
			wantErr: true,
			errMsg:  "can only contain",
		},
		{
			name:    "club id with unicode",
			clubID:  "клуб",
			wantErr: true,
			errMsg:  "can only contain",
		},
		{
			name:    "club id too long",
			clubID:  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			wantErr: true,
			errMsg:  "can only contain",
		},
		{
			name:    "club id with sql injection attempt",
			clubID:  "x'; DROP TABLE players;--",
			wantErr: true,
			errMsg:  "can only contain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClubID(tt.clubID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{
			name:    "valid date",
			date:    "2026-03-01",
			wantErr: false,
		},
		{
			name:    "valid leap day",
			date:    "2028-02-29",
			wantErr: false,
		},
		{
			name:    "empty date",
			date:    "",
			wantErr: true,
		},
		{
			name:    "wrong separator",
			date:    "01.03.2026",
			wantErr: true,
		},
		{
			name:    "missing zero padding",
			date:    "2026-3-01",
			wantErr: true,
		},
		{
			name:    "nonexistent day",
			date:    "2026-02-30",
			wantErr: true,
		},
		{
			name:    "date with time suffix",
			date:    "2026-03-01T10:00:00Z",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate(tt.date)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
