package cron

import (
	"context"

	"github.com/Prakhar2818/NGO-APP/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartDonationCronJobs schedules the recurring maintenance work:
// reminding restaurants about soon-to-expire PENDING donations and
// sweeping old notification feed entries.
func StartDonationCronJobs(notifier *services.NotifierService) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if err := notifier.NotifyExpiringDonations(context.Background()); err != nil {
			logrus.WithError(err).Error("NotifyExpiringDonations failed")
		}
	})

	c.AddFunc("0 0 * * *", func() {
		if err := notifier.CleanupExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("CleanupExpiredNotifications failed")
		}
	})

	c.Start()
}
