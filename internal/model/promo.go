package model

import "time"

// DiscountType distinguishes how a campaign's value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// PromoCampaign is a time- and usage-bounded discount rule applied to a
// booking's total.  The booking engine reads campaigns and increments
// UsedCount inside the booking transaction; everything else about a
// campaign is managed elsewhere.
//
// Fields:
//  ID             – primary key identifier.
//  Code           – unique promo code entered by customers.
//  Type           – PERCENTAGE or FIXED.
//  ValueCents     – discount in cents for FIXED campaigns.
//  Percent        – discount percentage (0-100) for PERCENTAGE campaigns.
//  MinAmountCents – minimum qualifying order total in cents.
//  ValidFrom      – start of the validity window (inclusive).
//  ValidTo        – end of the validity window (inclusive).
//  UsageCap       – maximum number of redemptions.
//  UsedCount      – redemptions so far.
//  Active         – whether the campaign is switched on.
type PromoCampaign struct {
	ID             uint64       // promo_campaigns.id
	Code           string       // promo_campaigns.code
	Type           DiscountType // promo_campaigns.discount_type
	ValueCents     int64        // promo_campaigns.value_cents
	Percent        uint32       // promo_campaigns.percent
	MinAmountCents int64        // promo_campaigns.min_amount_cents
	ValidFrom      time.Time    // promo_campaigns.valid_from
	ValidTo        time.Time    // promo_campaigns.valid_to
	UsageCap       uint32       // promo_campaigns.usage_cap
	UsedCount      uint32       // promo_campaigns.used_count
	Active         bool         // promo_campaigns.active
	CreatedAt      time.Time    // promo_campaigns.created_at
	UpdatedAt      time.Time    // promo_campaigns.updated_at
}
