package balance

type AdjustBalanceRequest struct {
	TotalDays *int `json:"total_days" binding:"required,min=0"`
}

type BalanceResponse struct {
	UserID    string `json:"user_id"`
	TotalDays int    `json:"total_days"`
	UsedDays  int    `json:"used_days"`
	Available int    `json:"available"`
}

type AdjustmentResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	RequestID     *string `json:"request_id,omitempty"`
	Action        string  `json:"action"`
	Amount        int     `json:"amount"`
	BalanceBefore int     `json:"balance_before"`
	BalanceAfter  int     `json:"balance_after"`
	ActingUserID  string  `json:"acting_user_id"`
	CreatedAt     string  `json:"created_at"`
}
