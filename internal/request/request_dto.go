package request

type CreateRequest struct {
	Type      string `json:"type" binding:"required,oneof=PAID_LEAVE PERMIT SICK"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
}

type RequestResponse struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requester_id"`
	Type        string  `json:"type"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	WorkingDays int     `json:"working_days"`
	Reason      string  `json:"reason"`
	Status      string  `json:"status"`
	ApproverID  *string `json:"approver_id,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
}

type StatsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
}
