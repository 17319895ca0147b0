package order

type CreateOrderRequest struct {
	LinkingID int64         `json:"linking_id" binding:"required,gt=0"`
	Products  []LineRequest `json:"products" binding:"required,min=1,dive" validate:"max=100"`
}

// UpdateStatusRequest accepts only the statuses a supplier sets directly.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" validate:"oneof=created processing shipping completed"`
}
