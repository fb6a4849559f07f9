package messaging

// Service is the backend.Messenger combining WhatsApp and email.
type Service struct {
	*WhatsApp
	*Email
}

// NewService combines the two senders.
func NewService(whatsapp *WhatsApp, email *Email) *Service {
	return &Service{WhatsApp: whatsapp, Email: email}
}
