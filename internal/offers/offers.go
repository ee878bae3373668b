// Package offers owns the financial offer catalog and the eligibility
// matcher that compares a HealthScore against each offer's threshold.
package offers

import (
	id "healthcred/pkg/domain"
)

// Category partitions offers for display. Matching is uniform across
// categories; only the threshold test applies.
type Category string

const (
	CategoryLoan      Category = "loan"
	CategoryAid       Category = "aid"
	CategoryInsurance Category = "insurance"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryLoan, CategoryAid, CategoryInsurance}
}

// LoanTerms describe a micro-loan offer.
type LoanTerms struct {
	AmountUSD     int     `json:"amount_usd"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	TermMonths    int     `json:"term_months"`
	Processing    string  `json:"processing"`
}

// AidTerms describe an NGO aid grant.
type AidTerms struct {
	CoverageUSD  int    `json:"coverage_usd"`
	AidType      string `json:"aid_type"`
	Requirements string `json:"requirements"`
}

// InsuranceTerms describe an insurance plan.
type InsuranceTerms struct {
	PremiumUSDMonthly int    `json:"premium_usd_monthly"`
	DeductibleUSD     int    `json:"deductible_usd"`
	Coverage          string `json:"coverage"`
	Discount          string `json:"discount"`
}

// Terms holds the category-specific fields of an offer. Exactly one member
// is non-nil, matching the offer's category.
type Terms struct {
	Loan      *LoanTerms      `json:"loan,omitempty"`
	Aid       *AidTerms       `json:"aid,omitempty"`
	Insurance *InsuranceTerms `json:"insurance,omitempty"`
}

// Offer is one financial product with an eligibility threshold against the
// HealthScore. Status is derived at match time, never stored.
type Offer struct {
	ID          id.OfferID
	Category    Category
	Provider    string
	Threshold   int
	Terms       Terms
	Description string
}

// SeedCatalog returns the curated offer catalog in display order: three
// micro-loans, three NGO aid programs, two insurance plans.
func SeedCatalog() []Offer {
	return []Offer{
		{
			ID:        "medifund-micro",
			Category:  CategoryLoan,
			Provider:  "MediFund Micro",
			Threshold: 650,
			Terms: Terms{Loan: &LoanTerms{
				AmountUSD:     2500,
				AnnualRatePct: 4.5,
				TermMonths:    12,
				Processing:    "2-3 days",
			}},
			Description: "Emergency medical expenses and prescription costs",
		},
		{
			ID:        "healthcredit-plus",
			Category:  CategoryLoan,
			Provider:  "HealthCredit Plus",
			Threshold: 700,
			Terms: Terms{Loan: &LoanTerms{
				AmountUSD:     5000,
				AnnualRatePct: 6.2,
				TermMonths:    18,
				Processing:    "1-2 days",
			}},
			Description: "Surgical procedures and major medical treatments",
		},
		{
			ID:        "careassist-loans",
			Category:  CategoryLoan,
			Provider:  "CareAssist Loans",
			Threshold: 500,
			Terms: Terms{Loan: &LoanTerms{
				AmountUSD:     1000,
				AnnualRatePct: 8.9,
				TermMonths:    6,
				Processing:    "Same day",
			}},
			Description: "Urgent medical needs and pharmacy bills",
		},
		{
			ID:        "global-health-foundation",
			Category:  CategoryAid,
			Provider:  "Global Health Foundation",
			Threshold: 600,
			Terms: Terms{Aid: &AidTerms{
				CoverageUSD:  3000,
				AidType:      "Medical Bill Assistance",
				Requirements: "Income verification required",
			}},
			Description: "Covers emergency medical procedures and hospital bills",
		},
		{
			ID:        "medicare-support-network",
			Category:  CategoryAid,
			Provider:  "MediCare Support Network",
			Threshold: 550,
			Terms: Terms{Aid: &AidTerms{
				CoverageUSD:  1500,
				AidType:      "Prescription Aid",
				Requirements: "Chronic condition proof",
			}},
			Description: "Monthly prescription medication assistance program",
		},
		{
			ID:        "community-health-alliance",
			Category:  CategoryAid,
			Provider:  "Community Health Alliance",
			Threshold: 500,
			Terms: Terms{Aid: &AidTerms{
				CoverageUSD:  800,
				AidType:      "Preventive Care",
				Requirements: "No additional requirements",
			}},
			Description: "Wellness checkups and preventive health services",
		},
		{
			ID:        "healthguard-premium",
			Category:  CategoryInsurance,
			Provider:  "HealthGuard Premium",
			Threshold: 700,
			Terms: Terms{Insurance: &InsuranceTerms{
				PremiumUSDMonthly: 89,
				DeductibleUSD:     500,
				Coverage:          "Comprehensive",
				Discount:          "15% HealthScore discount",
			}},
			Description: "Full medical, dental, and vision coverage",
		},
		{
			ID:        "basiccare-essential",
			Category:  CategoryInsurance,
			Provider:  "BasicCare Essential",
			Threshold: 600,
			Terms: Terms{Insurance: &InsuranceTerms{
				PremiumUSDMonthly: 45,
				DeductibleUSD:     1200,
				Coverage:          "Basic Medical",
				Discount:          "10% HealthScore discount",
			}},
			Description: "Essential medical coverage for common conditions",
		},
	}
}
