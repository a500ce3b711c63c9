package model

// AdminStats is the moderation dashboard summary.
type AdminStats struct {
	TotalUsers  int `json:"total_users"`
	ActiveUsers int `json:"active_users"`
	TotalPosts  int `json:"total_posts"`
	ActivePosts int `json:"active_posts"`
}

type AdminUserListResponse struct {
	Users   []Profile `json:"users"`
	Page    int       `json:"page"`
	HasMore bool      `json:"has_more"`
}

type AdminPostListResponse struct {
	Posts   []Post `json:"posts"`
	Page    int    `json:"page"`
	HasMore bool   `json:"has_more"`
}
