package scheduler

import (
	"context"
	"time"
)

// QuotationExpiryJobName names the job that expires overdue quotations
const QuotationExpiryJobName = "quotation_expiry"

// QuotationExpirer expires sent quotations past their expiry date
type QuotationExpirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// QuotationExpiryJob builds the job that expires overdue quotations every interval
func QuotationExpiryJob(expirer QuotationExpirer, interval time.Duration) Job {
	if interval <= 0 {
		interval = time.Hour
	}
	return Job{
		Name:       QuotationExpiryJobName,
		Interval:   interval,
		Timeout:    5 * time.Minute,
		RunOnStart: true,
		Run:        expirer.ExpireOverdue,
	}
}
