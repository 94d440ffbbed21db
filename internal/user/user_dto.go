package user

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=60"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"omitempty,oneof=employee manager admin"`
	TotalDays *int   `json:"total_days" binding:"omitempty,min=0"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TotalDays int    `json:"total_days"`
	UsedDays  int    `json:"used_days"`
	Available int    `json:"available"`
}
