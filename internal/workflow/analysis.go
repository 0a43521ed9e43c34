// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"context"
	"fmt"

	"github.com/pdiddy/crewline/internal/analysis"
	"github.com/pdiddy/crewline/internal/crew"
	"github.com/pdiddy/crewline/pkg/types"
)

func analysisDataset() analysis.Dataset {
	return analysis.SampleSales(analysis.SampleSeed)
}

// AnalysisCrew returns explorer, statistician and business analyst for
// request over a dataset described by summary.
func AnalysisCrew(request, summary string) (crew.Pipeline, error) {
	explorer := types.Role{
		Name:      "Data Explorer",
		Objective: "Explore and understand the structure and content of the dataset",
		Persona: "You are an expert data analyst with years of experience in exploring and understanding various " +
			"types of datasets. You excel at identifying patterns, anomalies, and key characteristics in data.",
	}
	statistician := types.Role{
		Name:      "Statistician",
		Objective: "Perform statistical analysis and identify significant patterns",
		Persona: "You are a senior statistician with deep knowledge of statistical methods, hypothesis testing, and " +
			"data interpretation. You can identify correlations, trends, and statistical significance.",
	}
	analyst := types.Role{
		Name:      "Business Analyst",
		Objective: "Extract actionable business insights from the data analysis",
		Persona: "You are a strategic business analyst who can translate complex data findings into clear, actionable " +
			"business recommendations. You understand business context and can identify opportunities and risks from data patterns.",
	}

	return crew.New(
		types.Step{
			Name: "explore",
			Instructions: fmt.Sprintf("Analyze the following dataset based on the request: '%s'\n\nDataset Summary:\n%s\n", request, summary) +
				"Perform initial data exploration including:\n" +
				"- Data structure and types\n" +
				"- Missing values and data quality\n" +
				"- Basic statistics and distributions\n" +
				"- Potential data issues or anomalies",
			ExpectedOutput: "A comprehensive data exploration report with key findings and observations.",
			Role:           explorer,
		},
		types.Step{
			Name: "statistics",
			Instructions: "Based on the data exploration results, perform statistical analysis:\n" +
				"- Calculate relevant statistics (mean, median, std, correlations)\n" +
				"- Identify trends and patterns\n" +
				"- Perform hypothesis testing if applicable\n" +
				"- Create visualizations recommendations",
			ExpectedOutput: "Statistical analysis report with key metrics, patterns, and visualizations.",
			Role:           statistician,
		},
		types.Step{
			Name: "insights",
			Instructions: "Based on the statistical analysis, generate business insights:\n" +
				"- Key findings and their business implications\n" +
				"- Actionable recommendations\n" +
				"- Risk factors and opportunities\n" +
				"- Next steps for further analysis",
			ExpectedOutput: "Business insights report with actionable recommendations.",
			Role:           analyst,
		},
	)
}

// RunAnalysis analyses the sample sales dataset for request and builds the
// report from the business analyst's output.
func RunAnalysis(ctx context.Context, deps Deps, request string) (analysis.Report, error) {
	d := analysisDataset()

	p, err := AnalysisCrew(request, d.Summary())
	if err != nil {
		return analysis.Report{}, err
	}
	res, err := deps.run(ctx, p, request)
	if err != nil {
		return analysis.Report{}, err
	}

	report := analysis.NewReport(request, res.Final, d)
	deps.logger().Info("analysis complete", "recommendations", len(report.Recommendations))
	return report, nil
}
