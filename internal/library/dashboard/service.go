// Package dashboard computes the per-role counters shown after login.
package dashboard

import (
	"context"
	"database/sql"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/db"
)

// Stats are the dashboard counters. Fields a role does not see stay zero.
type Stats struct {
	BooksCount        int `json:"books_count"`
	MembersCount      int `json:"members_count"`
	ReservationsCount int `json:"reservations_count"`
	FinesCount        int `json:"fines_count"`
}

type Service struct{ db *sql.DB }

func NewService(conn *sql.DB) *Service { return &Service{db: conn} }

// Stats runs every count in one read-only transaction. On error the returned
// Stats are zero; callers decide whether to surface the error.
func (s *Service) Stats(ctx context.Context, id auth.Identity) (Stats, error) {
	var st Stats
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if err := count(ctx, tx, &st.BooksCount, `SELECT COUNT(*) FROM Book`); err != nil {
			return err
		}
		switch id.Role {
		case auth.RoleAdmin:
			if err := count(ctx, tx, &st.MembersCount, `SELECT COUNT(*) FROM Member`); err != nil {
				return err
			}
			fallthrough // 管理者は職員の集計も見る
		case auth.RoleEmployee:
			if err := count(ctx, tx, &st.ReservationsCount, `SELECT COUNT(*) FROM Reservation WHERE status = 'active'`); err != nil {
				return err
			}
			return count(ctx, tx, &st.FinesCount, `SELECT COUNT(*) FROM Fine`)
		case auth.RoleMember:
			// 会員は自分の分だけ
			memberID, err := auth.LookupMemberID(ctx, tx, id.Username)
			if err != nil {
				return err
			}
			if err := count(ctx, tx, &st.ReservationsCount,
				`SELECT COUNT(*) FROM Reservation WHERE member_id = ? AND status = 'active'`, memberID); err != nil {
				return err
			}
			return count(ctx, tx, &st.FinesCount, `SELECT COUNT(*) FROM Fine WHERE member_id = ?`, memberID)
		}
		return apierr.ErrInvalid("unknown role")
	})
	if err != nil {
		return Stats{}, apierr.FromStorage("dashboard stats", err)
	}
	return st, nil
}

func count(ctx context.Context, tx db.DBTX, dst *int, q string, args ...any) error {
	return tx.QueryRowContext(ctx, q, args...).Scan(dst)
}
