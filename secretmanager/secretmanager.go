package secretmanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var loadDefaultConfig = awsconfig.LoadDefaultConfig

var newSecretsManagerClient = func(cfg aws.Config) secretsManagerAPI {
	return secretsmanager.NewFromConfig(cfg)
}

// GetSecret fetches a secret string from AWS Secrets Manager.
func GetSecret(name string) (string, error) {
	ctx := context.Background()

	cfg, err := loadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}

	client := newSecretsManagerClient(cfg)
	output, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}

	if output.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", name)
	}
	return aws.ToString(output.SecretString), nil
}
