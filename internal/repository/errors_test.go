package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("connection reset")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"malformed uuid lookup", fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"}), ErrNotFound},
		{"other", other, other},
	}
	for _, tc := range cases {
		if got := mapPgError(tc.in); !errors.Is(got, tc.want) && got != tc.want {
			t.Fatalf("%s: mapPgError = %v, want %v", tc.name, got, tc.want)
		}
	}
}
