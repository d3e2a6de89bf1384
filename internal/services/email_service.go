package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/mfrancke/seatly/internal/models"
)

// AWSSESEmailService sends reservation confirmations through AWS SES.
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service.
func NewAWSSESEmailService(region, fromAddress string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		logger:      logger,
	}, nil
}

// SendReservationConfirmation emails the customer their booking details.
func (s *AWSSESEmailService) SendReservationConfirmation(ctx context.Context, res *models.Reservation) error {
	textBody := fmt.Sprintf(`Your reservation is in!

Name:       %s
Date:       %s
Time:       %s
Party size: %d
Status:     %s

If you need to change or cancel, reply to this email or call the restaurant.
`, res.CustomerName, res.ReservationDate, res.ReservationTime, res.PartySize, res.Status)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Your reservation is in!</h2>
    <table cellpadding="4">
        <tr><td><strong>Name</strong></td><td>%s</td></tr>
        <tr><td><strong>Date</strong></td><td>%s</td></tr>
        <tr><td><strong>Time</strong></td><td>%s</td></tr>
        <tr><td><strong>Party size</strong></td><td>%d</td></tr>
        <tr><td><strong>Status</strong></td><td>%s</td></tr>
    </table>
    <p>If you need to change or cancel, reply to this email or call the restaurant.</p>
</body>
</html>
`, res.CustomerName, res.ReservationDate, res.ReservationTime, res.PartySize, res.Status)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{res.CustomerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(fmt.Sprintf("Reservation confirmed for %s at %s", res.ReservationDate, res.ReservationTime)),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody)},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	s.logger.Info("reservation confirmation sent", slog.String("reservation_id", res.ID))
	return nil
}
