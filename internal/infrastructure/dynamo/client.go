package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/infrastructure/awsconfig"
)

// NewClient creates a DynamoDB client, pointed at LocalStack when AWS_ENDPOINT_URL is set.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.Load(ctx, cfg, "")
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = awsconfig.Endpoint(cfg)
	}), nil
}
