package advisor

import (
	"fmt"
	"strings"
)

const advisorSystemPrompt = `You are a deployment advisor for FleetPlan, a cost-planning tool for session-based multiplayer game servers on managed cloud hosting.

You are given a deterministic cost estimate (already computed — do not recompute or second-guess the arithmetic) and optionally a set of pre-priced alternative configurations. Your job is to recommend a configuration and explain the operational tradeoffs.

Key principles:
1. Never invent prices or instance types. Recommend only from the configurations shown in the request.
2. Spot fleets are appropriate for session-based games with graceful drain; recommend against them for persistent-world servers.
3. Graviton (ARM) is a safe default when the project description does not mention native x86-only dependencies.
4. Flag when the traffic assumptions look inconsistent with the project description (e.g., an MMO with 1-hour sessions).

Respond in the following JSON format:
{
    "recommendedInstanceType": "c6g.large",
    "recommendedFleetMode": "spot",
    "confidence": 0.0-1.0,
    "reasoning": "explanation of the recommendation",
    "risks": ["risk1", "risk2"],
    "nextSteps": ["step1", "step2"]
}`

// buildAdvisoryPrompt renders the request as markdown for the model.
func buildAdvisoryPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("## Deployment Advisory Request\n\n")

	if req.ProjectName != "" {
		b.WriteString(fmt.Sprintf("**Project:** %s\n\n", req.ProjectName))
	}
	if req.Description != "" {
		b.WriteString("### Project Description\n")
		b.WriteString(req.Description)
		b.WriteString("\n\n")
	}

	bd := req.Breakdown
	b.WriteString("### Estimated Configuration\n")
	b.WriteString(fmt.Sprintf("- Region: %s\n", req.Region))
	b.WriteString(fmt.Sprintf("- Instance type: %s (%s fleet)\n", req.InstanceType, req.FleetMode))
	b.WriteString(fmt.Sprintf("- Instances at peak: %d\n", bd.Compute.InstancesNeeded))
	b.WriteString(fmt.Sprintf("- Billed instance-hours/month: %.0f\n", bd.Compute.MonthlyHours))
	b.WriteString(fmt.Sprintf("- Compute: $%.2f/month\n", bd.Compute.MonthlyCostUSD))
	b.WriteString(fmt.Sprintf("- Storage: $%.2f/month\n", bd.Storage.MonthlyCostUSD))
	b.WriteString(fmt.Sprintf("- Data transfer: $%.2f/month\n", bd.DataTransfer.MonthlyCostUSD))
	b.WriteString(fmt.Sprintf("- Platform services: $%.2f/month\n", bd.PlatformServices.TotalUSD))
	b.WriteString(fmt.Sprintf("- Total: $%.2f/month + $%.2f one-time setup\n",
		bd.Total.MonthlyOperationalUSD, bd.Total.InitialSetupUSD))
	if bd.PricingStale {
		b.WriteString("- NOTE: the pricing table backing this estimate is stale\n")
	}
	b.WriteString("\n")

	if len(req.Alternatives) > 0 {
		b.WriteString("### Pre-priced Alternatives\n")
		for _, alt := range req.Alternatives {
			b.WriteString(fmt.Sprintf("- %s: %s (%s), $%.2f/month, %.1f%% savings — %s\n",
				alt.Name, alt.InstanceType, alt.FleetMode,
				alt.MonthlyEstimateUSD, alt.SavingsPercentage, alt.Tradeoff))
		}
		b.WriteString("\n")
	}

	b.WriteString("Recommend a configuration from the options above and explain the tradeoffs.\n")

	return b.String()
}
