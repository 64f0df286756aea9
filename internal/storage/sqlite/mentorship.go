package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/influence-hub/community-bot/internal/model"
)

type MentorshipStorage struct {
	db *sql.DB
}

func NewMentorshipStorage(db *sql.DB) *MentorshipStorage {
	return &MentorshipStorage{db: db}
}

func (s *MentorshipStorage) CreateApplication(ctx context.Context, app *model.MentorApplication) error {
	const query = `INSERT INTO mentor_applications (user_id, mentor_id, topic, status) VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query,
		app.UserID, app.MentorID, app.Topic, string(model.ApplicationStatusPending))
	if err != nil {
		return fmt.Errorf("could not create application: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}
	app.ID = int(id)
	app.Status = model.ApplicationStatusPending
	return nil
}

const applicationSelect = `
	SELECT m.id, m.user_id, m.mentor_id, m.topic, m.status, m.created_at, u.tg_user_id, u.username
	FROM mentor_applications m
	JOIN users u ON u.id = m.user_id
`

func (s *MentorshipStorage) FetchApplicationsForMentor(ctx context.Context, mentorID int) ([]model.MentorApplicationDetail, error) {
	const query = applicationSelect + ` WHERE m.mentor_id = ? ORDER BY m.id`
	rows, err := s.db.QueryContext(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch applications: %w", err)
	}
	defer rows.Close()

	var apps []model.MentorApplicationDetail
	for rows.Next() {
		d, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate applications: %w", err)
	}
	return apps, nil
}

// DecideApplication flips a pending application to a terminal status with
// the same guarded-update pattern as assignment moderation.
func (s *MentorshipStorage) DecideApplication(ctx context.Context, id int, approve bool) (*model.MentorApplicationDetail, error) {
	next := model.ApplicationStatusRejected
	if approve {
		next = model.ApplicationStatusApproved
	}

	const query = `UPDATE mentor_applications SET status = ? WHERE id = ? AND status = ?`
	result, err := s.db.ExecContext(ctx, query,
		string(next), id, string(model.ApplicationStatusPending))
	if err != nil {
		return nil, fmt.Errorf("could not decide application: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrApplicationNotFound
	}

	rows, err := s.db.QueryContext(ctx, applicationSelect+` WHERE m.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("could not fetch application: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, model.ErrApplicationNotFound
	}
	return scanApplication(rows)
}

func scanApplication(rows *sql.Rows) (*model.MentorApplicationDetail, error) {
	var d model.MentorApplicationDetail
	var status string
	err := rows.Scan(
		&d.Application.ID,
		&d.Application.UserID,
		&d.Application.MentorID,
		&d.Application.Topic,
		&status,
		&d.Application.CreatedAt,
		&d.TgUserID,
		&d.Username,
	)
	if err != nil {
		return nil, fmt.Errorf("could not scan application: %w", err)
	}
	d.Application.Status = model.ApplicationStatus(status)
	return &d, nil
}
