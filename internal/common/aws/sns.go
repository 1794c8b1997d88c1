// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EventPublisher publishes billing domain events to a single SNS topic.
type EventPublisher struct {
	api      SNSAPI
	topicARN string
}

func NewEventPublisher(ctx context.Context, region, topicARN string) (*EventPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &EventPublisher{api: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func NewEventPublisherWithAPI(api SNSAPI, topicARN string) *EventPublisher {
	return &EventPublisher{api: api, topicARN: topicARN}
}

// Publish sends payload as JSON with an eventType message attribute so
// subscribers can filter.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	out, err := p.api.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(p.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: awssdk.String("String"), StringValue: awssdk.String(eventType)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish %s: %w", eventType, err)
	}
	return awssdk.ToString(out.MessageId), nil
}

// NopPublisher drops events; used when SNS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) (string, error) { return "", nil }
