package service

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/mkarlsen/orgscan/blobstore"
	"github.com/mkarlsen/orgscan/collectors"
	"github.com/mkarlsen/orgscan/config"
	"github.com/mkarlsen/orgscan/delivery"
	"github.com/mkarlsen/orgscan/directory"
	"github.com/mkarlsen/orgscan/identity"
	"github.com/mkarlsen/orgscan/orchestrator"
	"github.com/mkarlsen/orgscan/report"
	"github.com/mkarlsen/orgscan/telemetry"
)

// NewFromConfig wires the pipeline against real AWS clients built
// from the management-account configuration.
func NewFromConfig(awsCfg aws.Config, cfg *config.Config, metrics *telemetry.RunMetrics) *Inventory {
	registry := collectors.NewRegistry()

	resolver := directory.NewResolver(organizations.NewFromConfig(awsCfg))
	broker := identity.NewBroker(sts.NewFromConfig(awsCfg), cfg.MemberRole, cfg.Retry)
	runner := orchestrator.New(broker, registry, collectors.NewClientFactory(awsCfg), cfg).
		WithMetrics(metrics)

	var transport delivery.Transport
	switch cfg.Delivery.Transport {
	case config.TransportSMTP:
		transport = delivery.NewSMTPTransport(
			secretsmanager.NewFromConfig(awsCfg),
			cfg.Delivery.SMTPEndpoint,
			cfg.Delivery.SMTPSecretARN,
		)
	default:
		transport = delivery.NewSESTransport(sesv2.NewFromConfig(awsCfg))
	}
	sender := delivery.NewMailer(transport, cfg.Delivery, cfg.Retry).WithMetrics(metrics)

	newPackager := func(runID string) Packager {
		var offloader report.Offloader
		if cfg.Offload.Bucket != "" {
			offloader = blobstore.NewStore(s3.NewFromConfig(awsCfg), cfg.Offload, runID)
		}
		return report.NewPackager(offloader, cfg.Delivery.MaxAttachmentBytes).WithMetrics(metrics)
	}

	return New(resolver, runner, newPackager, sender, registry.Kinds()).WithMetrics(metrics)
}
