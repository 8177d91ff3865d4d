package port

import "github.com/framecheck/framecheck/internal/domain/model"

// ReportPublisher fans verification reports out to subscribers
type ReportPublisher interface {
	// Publish delivers the message to every current subscriber
	Publish(msg *model.Message) error
}
