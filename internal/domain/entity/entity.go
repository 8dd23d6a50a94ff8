package entity

// Entity type names used as registry keys and in error messages.
const (
	TypeUser         = "User"
	TypePost         = "Post"
	TypeComment      = "Comment"
	TypeLike         = "Like"
	TypeNotification = "Notification"
	TypeMessage      = "Message"
)

// Record is any persisted business object addressable by a numeric id.
type Record interface {
	GetID() int64
	TypeName() string
}

// HasOwner is implemented by records that carry an owner identifier.
// Ownership checks dispatch on this capability instead of concrete types.
type HasOwner interface {
	OwnerID() int64
}
