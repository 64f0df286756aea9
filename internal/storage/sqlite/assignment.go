package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/influence-hub/community-bot/internal/model"
)

type AssignmentStorage struct {
	db *sql.DB

	// now is swappable in tests.
	now func() time.Time
}

func NewAssignmentStorage(db *sql.DB) *AssignmentStorage {
	return &AssignmentStorage{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Take inserts a new active assignment for (user, task) unless one already
// exists in a blocking status. Check and insert run in one transaction, the
// partial unique index on open assignments backstops the check.
func (s *AssignmentStorage) Take(
	ctx context.Context,
	userID int,
	taskID int,
	dueAt time.Time,
	blocking []model.AssignmentStatus,
) (*model.Assignment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT COUNT(*) FROM task_assignments WHERE user_id = ? AND task_id = ?`
	args := []any{userID, taskID}
	if len(blocking) > 0 {
		query += ` AND status IN (` + placeholders(len(blocking)) + `)`
		for _, st := range blocking {
			args = append(args, string(st))
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("could not check for duplicate assignment: %w", err)
	}
	if count > 0 {
		return nil, model.ErrAssignmentExists
	}

	takenAt := s.now()
	const insert = `
		INSERT INTO task_assignments (task_id, user_id, taken_at, due_at, status)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, insert,
		taskID, userID, takenAt, dueAt, string(model.AssignmentStatusActive))
	if err != nil {
		return nil, fmt.Errorf("could not create assignment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit take: %w", err)
	}

	return &model.Assignment{
		ID:      int(id),
		TaskID:  taskID,
		UserID:  userID,
		TakenAt: takenAt,
		DueAt:   dueAt,
		Status:  model.AssignmentStatusActive,
	}, nil
}

// Submit attaches the proof payload to the open assignment of (user, task)
// and moves it to submitted. Submitting again while already submitted
// overwrites the payload, latest wins.
func (s *AssignmentStorage) Submit(
	ctx context.Context,
	userID int,
	taskID int,
	proofText string,
	proofFileID string,
) (*model.Assignment, error) {
	submittedAt := s.now()
	const query = `
		UPDATE task_assignments
		SET proof_text = ?, proof_file_id = ?, submitted_at = ?, status = ?
		WHERE user_id = ? AND task_id = ? AND status IN (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		proofText,
		proofFileID,
		submittedAt,
		string(model.AssignmentStatusSubmitted),
		userID,
		taskID,
		string(model.AssignmentStatusActive),
		string(model.AssignmentStatusSubmitted),
	)
	if err != nil {
		return nil, fmt.Errorf("could not submit assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrAssignmentNotFound
	}

	return s.fetchOpen(ctx, userID, taskID)
}

func (s *AssignmentStorage) fetchOpen(ctx context.Context, userID, taskID int) (*model.Assignment, error) {
	const query = `
		SELECT id, task_id, user_id, taken_at, due_at, proof_text, proof_file_id, submitted_at, status
		FROM task_assignments
		WHERE user_id = ? AND task_id = ? AND status IN (?, ?)
	`
	row := s.db.QueryRowContext(ctx, query, userID, taskID,
		string(model.AssignmentStatusActive), string(model.AssignmentStatusSubmitted))
	a, err := scanAssignment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("could not fetch assignment: %w", err)
	}
	return a, nil
}

// Decide finalizes a submitted assignment. The status flip is a guarded
// update, so a concurrent second decision loses the race and gets
// ErrWrongStatus. On approval the task reward is credited to the user
// inside the same transaction, a double approve can never double-credit.
func (s *AssignmentStorage) Decide(ctx context.Context, assignmentID int, approve bool) (*model.DecideResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	const load = `
		SELECT a.id, a.task_id, a.user_id, a.taken_at, a.due_at, a.proof_text, a.proof_file_id,
			a.submitted_at, a.status, t.reward_coins, u.tg_user_id
		FROM task_assignments a
		JOIN tasks t ON t.id = a.task_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = ?
	`
	var a model.Assignment
	var status string
	var submittedAt sql.NullTime
	var reward int
	var tgUserID int64
	err = tx.QueryRowContext(ctx, load, assignmentID).Scan(
		&a.ID, &a.TaskID, &a.UserID, &a.TakenAt, &a.DueAt, &a.ProofText, &a.ProofFileID,
		&submittedAt, &status, &reward, &tgUserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("could not load assignment: %w", err)
	}
	a.Status = model.AssignmentStatus(status)
	if submittedAt.Valid {
		a.SubmittedAt = submittedAt.Time
	}

	next := model.AssignmentStatusRejected
	if approve {
		next = model.AssignmentStatusApproved
	}

	const flip = `UPDATE task_assignments SET status = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, flip,
		string(next), assignmentID, string(model.AssignmentStatusSubmitted))
	if err != nil {
		return nil, fmt.Errorf("could not update assignment status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrWrongStatus
	}
	a.Status = next

	res := model.DecideResult{Assignment: a, TgUserID: tgUserID}
	if approve {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET coins = coins + ? WHERE id = ?`, reward, a.UserID); err != nil {
			return nil, fmt.Errorf("could not credit coins: %w", err)
		}
		if err := tx.QueryRowContext(ctx, `SELECT coins FROM users WHERE id = ?`, a.UserID).Scan(&res.CoinsAfter); err != nil {
			return nil, fmt.Errorf("could not read coin balance: %w", err)
		}
		res.Reward = reward
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit decision: %w", err)
	}
	return &res, nil
}

func (s *AssignmentStorage) GetAssignmentByID(ctx context.Context, id int) (*model.AssignmentDetail, error) {
	const query = detailSelect + ` WHERE a.id = ?`
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("could not get assignment: %w", err)
	}
	defer rows.Close()

	details, err := scanDetails(rows)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, model.ErrAssignmentNotFound
	}
	return &details[0], nil
}

const detailSelect = `
	SELECT a.id, a.task_id, a.user_id, a.taken_at, a.due_at, a.proof_text, a.proof_file_id,
		a.submitted_at, a.status, t.title, t.difficulty, t.reward_coins, u.tg_user_id, u.username
	FROM task_assignments a
	JOIN tasks t ON t.id = a.task_id
	JOIN users u ON u.id = a.user_id
`

func (s *AssignmentStorage) FetchPending(ctx context.Context, page int, perPage int) ([]model.AssignmentDetail, error) {
	if page < 1 {
		page = 1
	}
	query := detailSelect + ` WHERE a.status = ? ORDER BY a.submitted_at ASC, a.id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query,
		string(model.AssignmentStatusSubmitted), perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("could not fetch pending assignments: %w", err)
	}
	defer rows.Close()
	return scanDetails(rows)
}

func (s *AssignmentStorage) FetchUserAssignments(
	ctx context.Context,
	userID int,
	statuses []model.AssignmentStatus,
	page int,
	perPage int,
) ([]model.AssignmentDetail, error) {
	if page < 1 {
		page = 1
	}
	query := detailSelect + ` WHERE a.user_id = ?`
	args := []any{userID}
	if len(statuses) > 0 {
		query += ` AND a.status IN (` + placeholders(len(statuses)) + `)`
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += ` ORDER BY a.id DESC LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user assignments: %w", err)
	}
	defer rows.Close()
	return scanDetails(rows)
}

func (s *AssignmentStorage) CountByStatusForUser(ctx context.Context, userID int) (model.StatusCounts, error) {
	const query = `SELECT status, COUNT(*) FROM task_assignments WHERE user_id = ? GROUP BY status`
	return s.countByStatus(ctx, query, userID)
}

func (s *AssignmentStorage) CountByStatus(ctx context.Context) (model.StatusCounts, error) {
	const query = `SELECT status, COUNT(*) FROM task_assignments GROUP BY status`
	return s.countByStatus(ctx, query)
}

func (s *AssignmentStorage) countByStatus(ctx context.Context, query string, args ...any) (model.StatusCounts, error) {
	var counts model.StatusCounts
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return counts, fmt.Errorf("could not count assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("could not scan count: %w", err)
		}
		switch model.AssignmentStatus(status) {
		case model.AssignmentStatusActive:
			counts.Active = n
		case model.AssignmentStatusSubmitted:
			counts.Submitted = n
		case model.AssignmentStatusApproved:
			counts.Approved = n
		case model.AssignmentStatusRejected:
			counts.Rejected = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("could not iterate counts: %w", err)
	}
	return counts, nil
}

func (s *AssignmentStorage) HasUnfinishedForTask(ctx context.Context, taskID int) (bool, error) {
	const query = `SELECT COUNT(*) FROM task_assignments WHERE task_id = ? AND status IN (?, ?)`
	var count int
	err := s.db.QueryRowContext(ctx, query, taskID,
		string(model.AssignmentStatusActive), string(model.AssignmentStatusSubmitted)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("could not count open assignments: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssignment(row rowScanner) (*model.Assignment, error) {
	var a model.Assignment
	var status string
	var submittedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.TaskID, &a.UserID, &a.TakenAt, &a.DueAt,
		&a.ProofText, &a.ProofFileID, &submittedAt, &status,
	)
	if err != nil {
		return nil, err
	}
	a.Status = model.AssignmentStatus(status)
	if submittedAt.Valid {
		a.SubmittedAt = submittedAt.Time
	}
	return &a, nil
}

func scanDetails(rows *sql.Rows) ([]model.AssignmentDetail, error) {
	var details []model.AssignmentDetail
	for rows.Next() {
		var d model.AssignmentDetail
		var status, difficulty string
		var submittedAt sql.NullTime
		err := rows.Scan(
			&d.Assignment.ID, &d.Assignment.TaskID, &d.Assignment.UserID,
			&d.Assignment.TakenAt, &d.Assignment.DueAt,
			&d.Assignment.ProofText, &d.Assignment.ProofFileID,
			&submittedAt, &status,
			&d.TaskTitle, &difficulty, &d.Reward, &d.TgUserID, &d.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan assignment: %w", err)
		}
		d.Assignment.Status = model.AssignmentStatus(status)
		d.Difficulty = model.TaskDifficulty(difficulty)
		if submittedAt.Valid {
			d.Assignment.SubmittedAt = submittedAt.Time
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate assignments: %w", err)
	}
	return details, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
