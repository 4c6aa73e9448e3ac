package models

import "time"

// RequestStatus is the lifecycle state of a friend request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestDeclined
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// Only pending → accepted and pending → declined are allowed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return s == RequestPending && next.Terminal()
}

// FriendRequest expresses one user's intent to form a mutual relationship.
type FriendRequest struct {
	ID        string        `json:"id" db:"id"`
	FromID    string        `json:"fromId" db:"from_id"`
	ToID      string        `json:"toId" db:"to_id"`
	Status    RequestStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// FriendRequestWithSender includes the sender's profile for request listings.
type FriendRequestWithSender struct {
	ID        string        `json:"id"`
	Sender    UserResponse  `json:"sender"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Friendship is one direction of a mutual relationship. Acceptance writes both
// directions in one transaction.
type Friendship struct {
	UserID    string    `json:"userId" db:"user_id"`
	FriendID  string    `json:"friendId" db:"friend_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
