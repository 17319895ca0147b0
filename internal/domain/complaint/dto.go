package complaint

type CreateComplaintRequest struct {
	OrderID     int64  `json:"order_id" binding:"required,gt=0"`
	Description string `json:"description" binding:"required" validate:"max=4000"`
}

type EscalateRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type ResolutionRequest struct {
	Notes       string `json:"notes" validate:"max=2000"`
	CancelOrder bool   `json:"cancel_order"`
}
