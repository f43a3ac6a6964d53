package models

// 权限判定函数：纯谓词，只依赖已加载的实体，由各 handler 在写操作前显式调用

// CanUpdateGenre 只有管理员可以修改流派
func CanUpdateGenre(u *User) bool {
	if u == nil {
		return false
	}
	return u.IsModerator()
}

// CanDeleteComment 管理员或评论作者本人可以删除评论
func CanDeleteComment(u *User, c *Comment) bool {
	if u == nil || c == nil {
		return false
	}
	if u.IsModerator() {
		return true
	}
	return c.UserID != nil && *c.UserID == u.ID
}
