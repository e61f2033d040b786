package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	awscfg "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// AWSRateSource fetches live on-demand rates from the AWS Pricing API and
// instance specs from EC2. It is optional: when unavailable the seeder keeps
// the static rate card.
type AWSRateSource struct {
	pricingClient *pricing.Client
	ec2Client     *ec2.Client
}

// NewAWSRateSource builds a rate source from ambient AWS credentials.
// The Pricing API is only served from us-east-1 regardless of which regions
// are being priced.
func NewAWSRateSource(ctx context.Context) (*AWSRateSource, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &AWSRateSource{
		pricingClient: pricing.NewFromConfig(cfg),
		ec2Client:     ec2.NewFromConfig(cfg),
	}, nil
}

// FetchRates returns per-instance-type hourly Linux on-demand USD rates for
// the given region.
func (s *AWSRateSource) FetchRates(ctx context.Context, region string) (map[string]float64, error) {
	rates := make(map[string]float64)

	filters := []pricingtypes.Filter{
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("ServiceCode"), Value: awscfg.String("AmazonEC2")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("regionCode"), Value: awscfg.String(region)},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("operatingSystem"), Value: awscfg.String("Linux")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("tenancy"), Value: awscfg.String("Shared")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("preInstalledSw"), Value: awscfg.String("NA")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("capacitystatus"), Value: awscfg.String("Used")},
	}

	input := &pricing.GetProductsInput{
		ServiceCode: awscfg.String("AmazonEC2"),
		Filters:     filters,
		MaxResults:  awscfg.Int32(100),
	}

	const maxPages = 200 // safety limit to prevent unbounded pagination
	paginator := pricing.NewGetProductsPaginator(s.pricingClient, input)
	for page := 0; paginator.HasMorePages() && page < maxPages; page++ {
		pageResult, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting pricing products: %w", err)
		}
		for _, priceListJSON := range pageResult.PriceList {
			instanceType, hourly, ok := parsePriceListItem(priceListJSON)
			if !ok {
				continue
			}
			// Keep the lowest price seen per instance type.
			if existing, found := rates[instanceType]; !found || hourly < existing {
				rates[instanceType] = hourly
			}
		}
	}
	return rates, nil
}

// FetchSpecs returns vCPU and memory for the given instance types, correcting
// rate-card drift when instance generations are revised.
func (s *AWSRateSource) FetchSpecs(ctx context.Context, instanceTypes []string) (map[string]InstanceSpec, error) {
	specs := make(map[string]InstanceSpec, len(instanceTypes))

	// DescribeInstanceTypes accepts at most 100 explicit types per call; the
	// rate card is far smaller, so a single call suffices.
	types := make([]ec2types.InstanceType, 0, len(instanceTypes))
	for _, it := range instanceTypes {
		types = append(types, ec2types.InstanceType(it))
	}
	out, err := s.ec2Client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: types,
	})
	if err != nil {
		return nil, fmt.Errorf("describing instance types: %w", err)
	}
	for _, it := range out.InstanceTypes {
		spec := InstanceSpec{}
		if it.VCpuInfo != nil && it.VCpuInfo.DefaultVCpus != nil {
			spec.VCPUs = int(*it.VCpuInfo.DefaultVCpus)
		}
		if it.MemoryInfo != nil && it.MemoryInfo.SizeInMiB != nil {
			spec.MemoryMiB = *it.MemoryInfo.SizeInMiB
		}
		specs[string(it.InstanceType)] = spec
	}
	return specs, nil
}

// InstanceSpec is the subset of EC2 instance metadata the rate card carries.
type InstanceSpec struct {
	VCPUs     int
	MemoryMiB int64
}

// parsePriceListItem extracts the instance type and hourly on-demand USD
// price from a single PriceList JSON document.
func parsePriceListItem(priceJSON string) (instanceType string, price float64, ok bool) {
	var item struct {
		Product struct {
			Attributes struct {
				InstanceType string `json:"instanceType"`
			} `json:"attributes"`
		} `json:"product"`
		Terms struct {
			OnDemand map[string]struct {
				PriceDimensions map[string]struct {
					Unit         string            `json:"unit"`
					PricePerUnit map[string]string `json:"pricePerUnit"`
				} `json:"priceDimensions"`
			} `json:"OnDemand"`
		} `json:"terms"`
	}

	if err := json.Unmarshal([]byte(priceJSON), &item); err != nil {
		return "", 0, false
	}
	instanceType = item.Product.Attributes.InstanceType
	if instanceType == "" {
		return "", 0, false
	}

	for _, offer := range item.Terms.OnDemand {
		for _, dim := range offer.PriceDimensions {
			if dim.Unit != "Hrs" {
				continue
			}
			usdStr, exists := dim.PricePerUnit["USD"]
			if !exists {
				continue
			}
			p, err := strconv.ParseFloat(usdStr, 64)
			if err != nil || p <= 0 {
				continue
			}
			return instanceType, p, true
		}
	}
	return "", 0, false
}
