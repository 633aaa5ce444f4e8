package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"accentclash/internal/models"
)

// EmailService sends progress-report emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. If fromEmail is empty the
// service is disabled and all sends become no-ops.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled reports whether the service will actually send email
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendProgressReport emails a learner their recent practice rollup
func (s *EmailService) SendProgressReport(ctx context.Context, progress *models.LearnerProgress) error {
	if !s.enabled {
		return nil
	}

	learner := progress.Learner
	subject := "Your AccentClash progress this week"

	weakList := make([]string, 0, len(progress.WeakPhonemes))
	for _, wp := range progress.WeakPhonemes {
		weakList = append(weakList, fmt.Sprintf("/%s/ (%.0f, heard in %s)", wp.Phoneme, wp.Score, strings.Join(wp.ExampleWords, ", ")))
	}
	weakSection := "No weak phonemes detected. Keep it up!"
	if len(weakList) > 0 {
		weakSection = "Sounds to focus on:\n  " + strings.Join(weakList, "\n  ")
	}

	textBody := fmt.Sprintf(`Hi %s,

Here is your pronunciation practice summary:

  Sessions completed: %d
  Attempts recorded:  %d
  Average score:      %.1f
  Best score:         %.1f

%s

Practice now: %s

---
This is an automated email from AccentClash. Please do not reply.
`, learner.Name, progress.CompletedSessions, progress.TotalAttempts, progress.AverageScore, progress.BestScore, weakSection, s.appBaseURL)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.stat { font-size: 18px; margin: 8px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Your Progress This Week</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p class="stat">Sessions completed: <strong>%d</strong></p>
			<p class="stat">Attempts recorded: <strong>%d</strong></p>
			<p class="stat">Average score: <strong>%.1f</strong></p>
			<p class="stat">Best score: <strong>%.1f</strong></p>
			<p>%s</p>
			<p><a href="%s">Practice now</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from AccentClash. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, learner.Name, progress.CompletedSessions, progress.TotalAttempts, progress.AverageScore, progress.BestScore, strings.ReplaceAll(weakSection, "\n", "<br>"), s.appBaseURL)

	return s.sendEmail(ctx, learner.Email, subject, htmlBody, textBody)
}

func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
