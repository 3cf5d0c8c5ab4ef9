package profile

import "github.com/google/uuid"

// UpdateMeRequest is the body of PUT /api/me. Role and e-mail are not
// editable here.
type UpdateMeRequest struct {
	FullName       *string    `json:"full_name" validate:"omitempty,min=2,max=200"`
	Phone          *string    `json:"phone" validate:"omitempty,max=30"`
	AvatarURL      *string    `json:"avatar_url" validate:"omitempty,url"`
	PositionID     *uuid.UUID `json:"position_id"`
	WorkLocationID *uuid.UUID `json:"work_location_id"`
}

// Apply copies the set fields onto p.
func (req *UpdateMeRequest) Apply(p *Profile) {
	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.AvatarURL != nil {
		p.AvatarURL = req.AvatarURL
	}
	if req.PositionID != nil {
		p.PositionID = req.PositionID
	}
	if req.WorkLocationID != nil {
		p.WorkLocationID = req.WorkLocationID
	}
}
