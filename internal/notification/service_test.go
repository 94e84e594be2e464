package notification_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vehicle-permit/internal/core/events"
	"github.com/frahmantamala/vehicle-permit/internal/notification"
	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

var _ = Describe("Notification Service", func() {
	var (
		dir     *mockDirectory
		sender  *recordingSender
		service *notification.Service
		logger  *slog.Logger
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		dir = newMockDirectory(
			&user.User{ID: 1, NIK: "001", Name: "Karyawan", Role: user.RoleEmployee, DeviceToken: strPtr("device-1")},
			&user.User{ID: 2, NIK: "002", Name: "HR", Role: user.RoleHR},
			&user.User{ID: 3, NIK: "003", Name: "Admin", Role: user.RoleAdmin, DeviceToken: strPtr("")},
		)
		sender = &recordingSender{}
		service = notification.NewService(dir, sender, logger)
	})

	Describe("Notify", func() {
		It("sends to the registered device token", func() {
			result := service.Notify(ctx, 1, "Title", "Body", map[string]string{"k": "v"})

			Expect(result.Delivered).To(BeTrue())
			Expect(result.MessageID).To(Equal("msg-1"))
			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].Token).To(Equal("device-1"))
			Expect(sender.sent[0].Data).To(HaveKeyWithValue("k", "v"))
		})

		It("reports undelivered for an unknown user", func() {
			result := service.Notify(ctx, 99, "Title", "Body", nil)

			Expect(result.Delivered).To(BeFalse())
			Expect(result.MessageID).To(BeEmpty())
			Expect(sender.sent).To(BeEmpty())
		})

		It("reports undelivered when no token is registered", func() {
			Expect(service.Notify(ctx, 2, "Title", "Body", nil).Delivered).To(BeFalse())
			Expect(service.Notify(ctx, 3, "Title", "Body", nil).Delivered).To(BeFalse())
			Expect(sender.sent).To(BeEmpty())
		})

		It("degrades a transport failure to undelivered", func() {
			sender.err = errBoom

			Expect(service.Notify(ctx, 1, "Title", "Body", nil).Delivered).To(BeFalse())
		})

		It("degrades a lookup failure to undelivered", func() {
			dir.lookupErr = errBoom

			Expect(service.Notify(ctx, 1, "Title", "Body", nil).Delivered).To(BeFalse())
		})
	})

	Describe("RegisterDeviceToken", func() {
		It("stores the token, including an empty one", func() {
			updated, err := service.RegisterDeviceToken(ctx, 2, "device-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeTrue())
			Expect(*dir.users[2].DeviceToken).To(Equal("device-2"))

			updated, err = service.RegisterDeviceToken(ctx, 2, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeTrue())
			Expect(*dir.users[2].DeviceToken).To(BeEmpty())
		})

		It("reports false for an unknown user", func() {
			updated, err := service.RegisterDeviceToken(ctx, 99, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeFalse())
		})
	})

	Describe("EventHandler", func() {
		var (
			queue   *recordingQueue
			handler *notification.EventHandler
		)

		BeforeEach(func() {
			queue = &recordingQueue{}
			handler = notification.NewEventHandler(dir, queue, logger)
		})

		It("queues a push for the requester of a decided permit", func() {
			evt := events.NewPermitDecidedEvent(7, "001", "Disetujui", 2, "2024-01-15", "10:30")

			Expect(handler.HandlePermitDecided(ctx, evt)).To(Succeed())

			Expect(queue.jobs).To(HaveLen(1))
			job := queue.jobs[0]
			Expect(job.UserID).To(Equal(int64(1)))
			Expect(job.Title).To(Equal("Vehicle permit approved"))
			Expect(job.Body).To(ContainSubstring("#7"))
			Expect(job.Data).To(HaveKeyWithValue("status", "Disetujui"))
		})

		It("words a rejection as rejected", func() {
			job := notification.DecisionJob(1, events.NewPermitDecidedEvent(8, "001", "Ditolak", 2, "2024-01-15", "10:30"))
			Expect(job.Title).To(Equal("Vehicle permit rejected"))
		})

		It("skips requesters without an account", func() {
			evt := events.NewPermitDecidedEvent(7, "404", "Ditolak", 2, "2024-01-15", "10:30")

			Expect(handler.HandlePermitDecided(ctx, evt)).To(Succeed())
			Expect(queue.jobs).To(BeEmpty())
		})

		It("drops the push when the queue is full", func() {
			queue.err = pushgateway.ErrQueueFull
			evt := events.NewPermitDecidedEvent(7, "001", "Disetujui", 2, "2024-01-15", "10:30")

			Expect(handler.HandlePermitDecided(ctx, evt)).To(Succeed())
		})

		It("rejects unrelated events", func() {
			evt := events.NewPermitCreatedEvent(7, "001", "Karyawan", "2024-01-15")
			Expect(handler.HandlePermitDecided(ctx, evt)).NotTo(Succeed())
		})

		It("delivers end to end through the bus and the pool", func() {
			pool := pushgateway.NewPool(pushgateway.PoolConfig{MaxWorkers: 1, QueueSize: 4}, service.Deliver, logger)
			bus := events.NewEventBus(logger)
			notification.NewEventHandler(dir, pool, logger).RegisterEventHandlers(bus)

			Expect(bus.Publish(ctx, events.NewPermitDecidedEvent(7, "001", "Disetujui", 2, "2024-01-15", "10:30"))).To(Succeed())
			Expect(bus.Wait(ctx)).To(Succeed())
			Expect(pool.Shutdown(ctx)).To(Succeed())

			Expect(sender.sent).To(HaveLen(1))
			Expect(sender.sent[0].Title).To(Equal("Vehicle permit approved"))
		})
	})
})
