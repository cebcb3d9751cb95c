package models

import "time"

type Participant struct {
	ID           int        `json:"id" db:"id"`
	EmpID        string     `json:"emp_id" db:"emp_id"`
	Name         string     `json:"name" db:"name"`
	Email        *string    `json:"email,omitempty" db:"email"`
	Location     *string    `json:"location,omitempty" db:"location"`
	SubLocation  *string    `json:"sub_location,omitempty" db:"sub_location"`
	Game         string     `json:"game" db:"game"`
	Category     string     `json:"category" db:"category"`
	Slot         *string    `json:"slot,omitempty" db:"slot"`
	PartnerEmpID *string    `json:"partner_emp_id,omitempty" db:"partner_emp_id"`
	Gender       *string    `json:"gender,omitempty" db:"gender"`
	Present      bool       `json:"present" db:"present"`
	PresentAt    *time.Time `json:"present_at,omitempty" db:"present_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// Team is a doubles pairing of two participants with mutual partner
// references. It exists only during fixture generation and is never persisted.
type Team struct {
	Player1 Participant `json:"player1"`
	Player2 Participant `json:"player2"`
}
