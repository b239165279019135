package sns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/infrastructure/awsconfig"
)

// SNS rejects subjects longer than this.
const maxSubjectLen = 100

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher delivers operator notifications to an SNS topic.
type Publisher struct {
	client   publisher
	topicARN string
}

func NewPublisher(ctx context.Context, cfg *config.Config) (*Publisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, errors.New("sns: SNS_TOPIC_ARN is not set")
	}
	awsCfg, err := awsconfig.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, fmt.Errorf("sns: %w", err)
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(cfg)
	})
	return &Publisher{client: client, topicARN: cfg.SNSTopicARN}, nil
}

func (p *Publisher) Notify(ctx context.Context, subject, body string) error {
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
