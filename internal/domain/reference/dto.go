package reference

type WorkLocationRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	City    *string `json:"city" validate:"omitempty,max=120"`
	State   *string `json:"state" validate:"omitempty,len=2"`
}

type PositionRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=200"`
	Department *string `json:"department" validate:"omitempty,max=200"`
}
