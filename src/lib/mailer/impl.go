package mailer

import (
	"encoding/json"
	"fmt"
	"os"
	"rsv/src/lib"
	"rsv/src/types"
)

// NewMailerMessage queues an outbound email instead of sending inline; the
// mail worker drains the queue.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	apiEnv := os.Getenv("API_ENV")
	emailBody := types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	if apiEnv == string(types.Local) {
		if err := lib.KafkaProduceMessage("emails", lib.WithSuffix(emailQueue), emailBody); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	body, err := json.Marshal(&emailBody)
	if err != nil {
		return err
	}
	if err := lib.SQSProduceMessage(lib.WithSuffix(emailQueue), string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}
