package types

// User is a BrainInk account as returned by the friends service.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Avatar    string `json:"avatar"`
	Email     string `json:"email,omitempty"`
}

// DisplayName returns "first last" when both names are set, otherwise the username.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Message is a direct message between two users.
type Message struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Content     string     `json:"content"`
	MessageType string     `json:"message_type"`
	Status      string     `json:"status"`
	CreatedAt   Timestamp  `json:"created_at"`
	ReadAt      *Timestamp `json:"read_at,omitempty"`
	SenderInfo  *User      `json:"sender_info,omitempty"`
}

// IsUnread reports whether the message has not been read by its receiver.
// A message counts as unread unless it has both a read time and the read status.
func (m Message) IsUnread() bool {
	return m.ReadAt == nil || m.ReadAt.IsZero() || m.Status != "read"
}

// FriendRequest is a pending friendship awaiting the receiver's answer.
type FriendRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	ReceiverID  int64     `json:"receiver_id"`
	Status      string    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
	FriendInfo  *User     `json:"friend_info,omitempty"`
}

// RequesterName returns the best available name for the requester.
func (r FriendRequest) RequesterName() string {
	if r.FriendInfo == nil {
		return ""
	}
	return r.FriendInfo.DisplayName()
}
