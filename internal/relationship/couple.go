package relationship

import "time"

// Couple is the two-partner shape older clients expect.
type Couple struct {
	ID             string       `json:"id"`
	RelationshipID string       `json:"relationship_id"`
	Name           *string      `json:"name,omitempty"`
	InviteCode     string       `json:"invite_code"`
	Status         string       `json:"status"`
	Partner1       *UserSummary `json:"partner1"`
	Partner2       *UserSummary `json:"partner2"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ToCouple projects a relationship view onto the legacy couple shape. Only the
// first two members by join order are surfaced.
func ToCouple(v *View) *Couple {
	if v == nil {
		return nil
	}
	c := &Couple{
		ID:             v.ID,
		RelationshipID: v.ID,
		Name:           v.Name,
		InviteCode:     v.InviteCode,
		Status:         string(v.Status),
		CreatedAt:      v.CreatedAt,
	}
	if len(v.Members) > 0 {
		c.Partner1 = partner(v.Members[0])
	}
	if len(v.Members) > 1 {
		c.Partner2 = partner(v.Members[1])
	}
	return c
}

func partner(m MemberView) *UserSummary {
	if m.User != nil {
		return m.User
	}
	return &UserSummary{ID: m.UserID}
}
