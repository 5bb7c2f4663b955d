package ports

import (
	"context"

	"csvdash/domain/dataset"
)

// Email is one outgoing message
type Email struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// EmailGenerator produces the body of one email from a template and a row
type EmailGenerator interface {
	GenerateEmail(ctx context.Context, template string, row dataset.Record) (string, error)
}

// EmailSender hands one message to the delivery endpoint. Implementations
// return a *errors.DeliveryError when the endpoint does not accept it.
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) error
}
