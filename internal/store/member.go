package store

import (
	"database/sql"
	"fmt"

	"github.com/soluo/mental-load/internal/model"
)

type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	var userID sql.NullInt64
	var email sql.NullString

	err := scanner.Scan(&m.ID, &m.HouseholdID, &userID, &m.FirstName, &m.Role, &email, &m.Color, &m.JoinedAt)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		m.UserID = &userID.Int64
	}
	if email.Valid {
		m.Email = &email.String
	}
	return &m, nil
}

const memberCols = `id, household_id, user_id, first_name, role, email, color, joined_at`

// Create inserts a member row. userID is nil for placeholder profiles
// without a login.
func (s *MemberStore) Create(householdID int64, userID *int64, firstName string, role model.Role, email *string, color string) (*model.Member, error) {
	var uID sql.NullInt64
	if userID != nil {
		uID = sql.NullInt64{Int64: *userID, Valid: true}
	}
	var em sql.NullString
	if email != nil {
		em = sql.NullString{String: *email, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO members (household_id, user_id, first_name, role, email, color) VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, uID, firstName, string(role), em, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) GetByID(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// GetByUser returns the membership linked to a user account, or nil if
// the user belongs to no household.
func (s *MemberStore) GetByUser(userID int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE user_id = ?`, userID)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member by user: %w", err)
	}
	return m, nil
}

func (s *MemberStore) ListByHousehold(householdID int64) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE household_id = ? ORDER BY joined_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *MemberStore) CountByHousehold(householdID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM members WHERE household_id = ?`, householdID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

// UsedColors returns the colors currently assigned in a household.
func (s *MemberStore) UsedColors(householdID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT color FROM members WHERE household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("used colors: %w", err)
	}
	defer rows.Close()

	var colors []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// Update applies a partial patch; nil fields keep their current value.
func (s *MemberStore) Update(id int64, firstName *string, role *model.Role, email *string) (*model.Member, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	name := existing.FirstName
	if firstName != nil {
		name = *firstName
	}
	r := existing.Role
	if role != nil {
		r = *role
	}
	var em sql.NullString
	if email != nil {
		em = sql.NullString{String: *email, Valid: true}
	} else if existing.Email != nil {
		em = sql.NullString{String: *existing.Email, Valid: true}
	}

	_, err = s.db.Exec(
		`UPDATE members SET first_name = ?, role = ?, email = ? WHERE id = ?`,
		name, string(r), em, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update member: %w", err)
	}
	return s.GetByID(id)
}

func (s *MemberStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
