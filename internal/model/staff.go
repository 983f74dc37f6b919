package model

import "github.com/google/uuid"

type Staff struct {
	Base
	BranchID  uuid.UUID `db:"branch_id" json:"branch_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Role      string    `db:"role" json:"role,omitempty"`
	Available bool      `db:"available" json:"available"`
}

// StaffBranch lets a staff member serve additional branches beyond their
// home branch.
type StaffBranch struct {
	StaffID  uuid.UUID `db:"staff_id" json:"staff_id"`
	BranchID uuid.UUID `db:"branch_id" json:"branch_id"`
}

type CreateStaffRequest struct {
	BranchID uuid.UUID `json:"branch_id" validate:"required"`
	Name     string    `json:"name" validate:"required,max=120"`
	Email    string    `json:"email" validate:"required,email"`
	Phone    string    `json:"phone" validate:"max=20"`
	Role     string    `json:"role" validate:"max=60"`
}

type UpdateStaffRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	Available *bool   `json:"available"`
}
