// Package dns looks up the Route 53 hosted zone an environment publishes its
// records in.
package dns

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
)

// Route53API is the part of the Route 53 client used here.
type Route53API interface {
	ListHostedZonesByName(ctx context.Context, params *route53.ListHostedZonesByNameInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesByNameOutput, error)
}

// Resolver finds hosted zones.
type Resolver struct {
	client Route53API
	logger log.Logger
}

func NewResolver(client Route53API, logger log.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// PublicZoneID returns the id, without the `/hostedzone/` prefix, of the public
// zone named domain. Private zones with the same name are ignored.
func (resolver *Resolver) PublicZoneID(ctx context.Context, domain string) (string, error) {
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" {
		return "", errors.New(ZoneNotFoundError{Domain: domain})
	}

	input := &route53.ListHostedZonesByNameInput{DNSName: aws.String(domain)}

	for {
		output, err := resolver.client.ListHostedZonesByName(ctx, input)
		if err != nil {
			return "", errors.Errorf("Error listing hosted zones for %s: %w", domain, err)
		}

		for _, zone := range output.HostedZones {
			name := strings.TrimSuffix(aws.ToString(zone.Name), ".")
			if name != domain {
				continue
			}

			if zone.Config != nil && zone.Config.PrivateZone {
				continue
			}

			id := strings.TrimPrefix(aws.ToString(zone.Id), "/hostedzone/")
			resolver.logger.Debugf("Found public hosted zone %s for %s", id, domain)

			return id, nil
		}

		// zones are listed in name order, so there is no match past this page
		if next := strings.TrimSuffix(aws.ToString(output.NextDNSName), "."); !output.IsTruncated || next != domain {
			break
		}

		input = &route53.ListHostedZonesByNameInput{
			DNSName:      output.NextDNSName,
			HostedZoneId: output.NextHostedZoneId,
		}
	}

	return "", errors.New(ZoneNotFoundError{Domain: domain})
}
