package servicebus

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"social-hub/infrastructure/logger"
)

// IPublishEvents mirrors the publish-batch event onto an Azure Service Bus
// queue for consumers living in that cloud.
type IPublishEvents interface {
	SendMessage(ctx context.Context, message []byte) error
}

// NewServiceBus creates a Service Bus client with the default Azure
// credential chain.
func NewServiceBus(ctx context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, fmt.Errorf("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

type PublishEvents struct {
	client *azservicebus.Client
	queue  string
}

func NewPublishEvents(client *azservicebus.Client, queue string) IPublishEvents {
	return &PublishEvents{client: client, queue: queue}
}

func (p *PublishEvents) SendMessage(ctx context.Context, message []byte) error {
	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}()

	return sender.SendMessage(ctx, &azservicebus.Message{Body: message}, nil)
}
