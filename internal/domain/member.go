package domain

import "time"

// Member is a person identified by a normalized phone number. The
// phone is the only required attribute; profile fields arrive
// piecemeal with grievance submissions and are upserted each time.
type Member struct {
	ID        string
	Phone     string
	FirstName *string
	LastName  *string
	RegNumber *string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName joins whatever name parts are present.
func (m *Member) DisplayName() string {
	name := ""
	if m.FirstName != nil {
		name = *m.FirstName
	}
	if m.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *m.LastName
	}
	return name
}
