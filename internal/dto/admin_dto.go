package dto

// UpdateUserRoleRequest changes a user's role.
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=MEMBER LEADER ADMIN"`
}

// AdminStatsResponse summarises platform activity for the admin dashboard.
type AdminStatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	TotalLeaders  int64 `json:"total_leaders"`
	TotalMembers  int64 `json:"total_members"`
	TotalSessions int64 `json:"total_sessions"`
	TotalGroups   int64 `json:"total_groups"`
	TotalComments int64 `json:"total_comments"`
}
