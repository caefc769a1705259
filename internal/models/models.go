package models

// All lists every relational model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Post{},
		&Like{},
		&Comment{},
		&CommentLike{},
		&Notification{},
		&RevokedToken{},
	}
}
