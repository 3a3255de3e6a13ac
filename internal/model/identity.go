package model

// Actor 发起操作的已登录用户，由认证中间件构造后显式传入业务层
type Actor struct {
	UserID uint
	Role   string
	Email  string
}

// IsAdmin 是否为管理员
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Author 评论作者：注册用户或游客
// UserID 非空时以用户为准，游客字段被忽略
type Author struct {
	UserID     *uint
	GuestName  string
	GuestEmail string
}

// IsGuest 是否为游客
func (a Author) IsGuest() bool { return a.UserID == nil }
