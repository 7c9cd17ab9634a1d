package pgrepo

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "no rows",
			err:     pgx.ErrNoRows,
			wantErr: domain.ErrRecordNotFound,
		},
		{
			// пути с RowsAffected() == 0 передают сентинел напрямую, он обязан
			// пережить конвертацию.
			name:    "record not found passthrough",
			err:     domain.ErrRecordNotFound,
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:    "unique violation",
			err:     &pgconn.PgError{Code: "23505"},
			wantErr: domain.ErrDuplicateKey,
		},
		{
			name:    "foreign key violation",
			err:     &pgconn.PgError{Code: "23503"},
			wantErr: domain.ErrRecordNotFound,
		},
		{
			name:    "anything else",
			err:     errors.New("connection reset"),
			wantErr: domain.ErrUnknown,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got := convertErr(tt.err, "deactivating coupon %s for user %d", "SAVE10", 1)
			require.ErrorIs(t, got, tt.wantErr)
			assert.Contains(t, got.Error(), "[repository/deactivating coupon SAVE10 for user 1]")
		})
	}
}

func TestConvertErr_Nil(t *testing.T) {
	require.NoError(t, convertErr(nil, "whatever"))
}
