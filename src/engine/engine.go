package engine

import (
	"log"

	"rsv/src/config"
	"rsv/src/hooks"
	"rsv/src/lib"
	"rsv/src/lib/mailer"
	"rsv/src/models"

	"gorm.io/gorm"
)

// MailFunc hands a reminder off to the mail pipeline.
type MailFunc func(input *lib.SendMailInput) error

// Engine owns every reservation status change. Handlers, sweeps and
// payment providers all go through it; nothing else writes Status.
type Engine struct {
	db    *gorm.DB
	cfg   config.Snapshot
	hooks *hooks.Dispatcher
	mail  MailFunc
}

func New(db *gorm.DB, cfg config.Snapshot, dispatcher *hooks.Dispatcher) *Engine {
	return &Engine{
		db:    db,
		cfg:   cfg,
		hooks: dispatcher,
		mail:  mailer.NewMailerMessage,
	}
}

// WithMailer overrides the reminder delivery path. Tests use this.
func (e *Engine) WithMailer(mail MailFunc) *Engine {
	e.mail = mail
	return e
}

// scopeFor resolves the organizer/event path used to address extension
// hooks. A lookup failure only degrades the scope, never the transition.
func (e *Engine) scopeFor(eventID uint) string {
	var event models.Event
	if err := e.db.Preload("Organization").Where("id = ?", eventID).First(&event).Error; err != nil {
		log.Printf("[Engine] Could not resolve hook scope for event %d: %s\n", eventID, err.Error())
		return ""
	}
	return hooks.ScopePath(event.Organization.Name, event.Name)
}
