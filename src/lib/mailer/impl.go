package mailer

import (
	"fmt"
	"log"
	"os"

	"kiteops/src/config"
	"kiteops/src/lib"
	"kiteops/src/types"

	"github.com/wneessen/go-mail"
)

// NewMailerMessage delivers via SMTP; on local environments the message is
// also mirrored to the emails topic so dev tooling can observe it.
func NewMailerMessage(input *lib.SendMailInput) error {
	if config.API_ENV == string(types.Local) {
		emailBody := &types.JSONB{
			"from":      input.From,
			"from-name": input.FromName,
			"to":        input.To,
			"reply-to":  input.ReplyTo,
			"body":      input.Body,
			"html":      input.Html,
			"subject":   input.Subject,
		}
		if err := lib.KafkaProduceMessage("mailer", "emails", emailBody); err != nil {
			log.Printf("error mirroring message to emails topic: %s\n", err.Error())
		}
	}

	client, err := lib.GetSMTPClient()
	if err != nil {
		return err
	}
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		return err
	}
	if err := msg.To(input.To...); err != nil {
		return err
	}
	msg.Subject(input.Subject)
	if input.Html != "" {
		msg.SetBodyString(mail.TypeTextHTML, input.Html)
	} else {
		msg.SetBodyString(mail.TypeTextPlain, input.Body)
	}
	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending message: %s", err.Error())
	}
	return nil
}

// SendInvitationEmail composes the group booking invitation with the token
// link the invitee uses to accept or decline.
func SendInvitationEmail(email, fullName, bookingTitle, organizerName, token string) error {
	appURL := os.Getenv("APP_URL")
	link := fmt.Sprintf("%s/invitations/%s", appURL, token)
	subject := fmt.Sprintf("You have been invited to join %s", bookingTitle)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s invited you to join the group booking %q.\n\nAccept or decline here: %s\n",
		fullName, organizerName, bookingTitle, link,
	)
	return NewMailerMessage(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
		To:       []string{email},
		Subject:  subject,
		Body:     body,
	})
}
