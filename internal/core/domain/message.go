package domain

// Message is a text message addressed from one user id to another.
// Neither id is checked against existing users.
type Message struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
}
