package ports

import "context"

// MailMessage is one outbound notification.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the external notification sink. Delivery is best-effort.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailQueue accepts messages for asynchronous delivery so a slow or failing
// sink never blocks the request that produced the message.
type MailQueue interface {
	Enqueue(msg MailMessage)
}
