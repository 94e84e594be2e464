package permit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/auth"
	"github.com/frahmantamala/vehicle-permit/internal/core/events"
	"github.com/frahmantamala/vehicle-permit/internal/permit"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

var _ = Describe("Permit workflow", func() {
	var (
		service   *permit.Service
		repo      *mockPermitRepository
		publisher *recordingPublisher
		ctx       context.Context
		employee  *apperrors.Principal
		hr        *apperrors.Principal
		admin     *apperrors.Principal
		clock     time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockPermitRepository()
		publisher = &recordingPublisher{}
		clock = time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC)
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = permit.NewService(repo, auth.NewSubmissionPolicy(false), publisher, lg).
			WithClock(func() time.Time { return clock })

		employee = &apperrors.Principal{UserID: 1, NIK: "001", Role: user.RoleEmployee}
		hr = &apperrors.Principal{UserID: 2, NIK: "002", Role: user.RoleHR}
		admin = &apperrors.Principal{UserID: 3, NIK: "003", Role: user.RoleAdmin}
	})

	Describe("Submit", func() {
		It("creates a pending request without approval fields", func() {
			p, err := service.Submit(ctx, employee, validDTO())

			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(BeNumerically(">", 0))
			Expect(p.Status).To(Equal(permit.StatusPending))
			Expect(p.ApprovalDate).To(BeNil())
			Expect(p.ApprovalTime).To(BeNil())
			Expect(p.ApprovalConsistent()).To(BeTrue())
			Expect(publisher.Types()).To(ConsistOf(events.EventTypePermitCreated))
		})

		It("rejects a return before the departure", func() {
			dto := validDTO()
			dto.DepartureDate = "2024-01-15"
			dto.ReturnDate = "2024-01-14"

			_, err := service.Submit(ctx, employee, dto)
			Expect(errors.Is(err, apperrors.ErrInvalidDateRange)).To(BeTrue())
			Expect(repo.permits).To(BeEmpty())
		})

		It("rejects a same-day return earlier than departure", func() {
			dto := validDTO()
			dto.DepartureTime = "10:00"
			dto.ReturnTime = "09:59"

			_, err := service.Submit(ctx, employee, dto)
			Expect(errors.Is(err, apperrors.ErrInvalidDateRange)).To(BeTrue())
		})

		It("accepts a return equal to the departure", func() {
			dto := validDTO()
			dto.ReturnTime = dto.DepartureTime

			_, err := service.Submit(ctx, employee, dto)
			Expect(err).NotTo(HaveOccurred())
		})

		It("requires every field except remarks", func() {
			dto := validDTO()
			dto.DriverName = ""
			dto.PlateNumber = " "

			_, err := service.Submit(ctx, employee, dto)
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeValidationFailed))
			Expect(appErr.Details.(apperrors.ValidationErrors).Errors).To(HaveLen(2))
		})

		It("stores blank remarks as absent", func() {
			dto := validDTO()
			blank := "   "
			dto.Remarks = &blank

			p, err := service.Submit(ctx, employee, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Remarks).To(BeNil())
		})

		It("enforces self-service when the policy is on", func() {
			strict := permit.NewService(repo, auth.NewSubmissionPolicy(true), publisher, nil)
			dto := validDTO()
			dto.NIK = "999"

			_, err := strict.Submit(ctx, employee, dto)
			Expect(errors.Is(err, apperrors.ErrInsufficientPermissions)).To(BeTrue())
		})

		It("hides storage failures behind an internal error", func() {
			repo.createError = errors.New("disk full")

			_, err := service.Submit(ctx, employee, validDTO())
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(apperrors.ErrCodeInternal))
			Expect(appErr.Message).NotTo(ContainSubstring("disk full"))
		})
	})

	Describe("Decide", func() {
		var pending *permit.PermitRequest

		BeforeEach(func() {
			var err error
			pending, err = service.Submit(ctx, employee, validDTO())
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves a pending request with the given stamp", func() {
			p, err := service.Decide(ctx, hr, pending.ID, permit.DecideDTO{
				Status:       "Disetujui",
				ApprovalDate: "2024-01-15",
				ApprovalTime: "07:45",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(permit.StatusApproved))
			Expect(p.ApprovalDate.String()).To(Equal("2024-01-15"))
			Expect(*p.ApprovalTime).To(Equal("07:45"))
			Expect(p.ApprovalConsistent()).To(BeTrue())
			Expect(publisher.Types()).To(ContainElement(events.EventTypePermitDecided))
		})

		It("stamps the decision with the server clock when none is given", func() {
			p, err := service.Decide(ctx, admin, pending.ID, permit.DecideDTO{Status: "Ditolak"})

			Expect(err).NotTo(HaveOccurred())
			Expect(p.Status).To(Equal(permit.StatusRejected))
			Expect(p.ApprovalDate.String()).To(Equal("2024-01-16"))
			Expect(*p.ApprovalTime).To(Equal("09:30"))
		})

		It("refuses employees", func() {
			_, err := service.Decide(ctx, employee, pending.ID, permit.DecideDTO{Status: "Disetujui"})
			Expect(errors.Is(err, apperrors.ErrInsufficientPermissions)).To(BeTrue())

			stored, _ := repo.GetByID(ctx, pending.ID)
			Expect(stored.Status).To(Equal(permit.StatusPending))
		})

		It("fails with NotPending on the second decision", func() {
			_, err := service.Decide(ctx, hr, pending.ID, permit.DecideDTO{Status: "Disetujui"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decide(ctx, admin, pending.ID, permit.DecideDTO{Status: "Ditolak"})
			Expect(errors.Is(err, apperrors.ErrPermitNotPending)).To(BeTrue())

			stored, _ := repo.GetByID(ctx, pending.ID)
			Expect(stored.Status).To(Equal(permit.StatusApproved))
		})

		It("fails with NotFound for an unknown id", func() {
			_, err := service.Decide(ctx, hr, 4242, permit.DecideDTO{Status: "Disetujui"})
			Expect(errors.Is(err, apperrors.ErrPermitNotFound)).To(BeTrue())
		})

		It("rejects outcomes other than Disetujui or Ditolak", func() {
			_, err := service.Decide(ctx, hr, pending.ID, permit.DecideDTO{Status: "Pending"})
			appErr, ok := apperrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("lets exactly one of two concurrent deciders win", func() {
			outcomes := []string{"Disetujui", "Ditolak"}
			errs := make([]error, len(outcomes))

			var wg sync.WaitGroup
			for i, outcome := range outcomes {
				wg.Add(1)
				go func(i int, outcome string) {
					defer GinkgoRecover()
					defer wg.Done()
					_, errs[i] = service.Decide(ctx, hr, pending.ID, permit.DecideDTO{Status: outcome})
				}(i, outcome)
			}
			wg.Wait()

			successes, notPending := 0, 0
			for _, err := range errs {
				switch {
				case err == nil:
					successes++
				case errors.Is(err, apperrors.ErrPermitNotPending):
					notPending++
				}
			}
			Expect(successes).To(Equal(1))
			Expect(notPending).To(Equal(1))
		})

		It("still succeeds when nobody listens for events", func() {
			quiet := permit.NewService(repo, nil, nil, nil)
			_, err := quiet.Decide(ctx, hr, pending.ID, permit.DecideDTO{Status: "Disetujui"})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})

var _ = Describe("Permit queries", func() {
	var (
		query *permit.QueryService
		repo  *mockPermitRepository
		ctx   context.Context
	)

	seed := func(nik, departure string, status permit.Status) *permit.PermitRequest {
		dto := validDTO()
		dto.NIK = nik
		dto.DepartureDate = departure
		dto.ReturnDate = departure
		p, err := dto.ToPermit()
		Expect(err).NotTo(HaveOccurred())
		Expect(repo.Create(ctx, p)).To(Succeed())
		if status != permit.StatusPending {
			_, err := repo.Decide(ctx, p.ID, status, p.DepartureDate, "12:00")
			Expect(err).NotTo(HaveOccurred())
		}
		return p
	}

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockPermitRepository()
		query = permit.NewQueryService(repo, repo)
	})

	It("lists everything newest first", func() {
		first := seed("001", "2024-01-15", permit.StatusPending)
		second := seed("002", "2024-01-16", permit.StatusPending)

		all, err := query.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(2))
		Expect(all[0].ID).To(Equal(second.ID))
		Expect(all[1].ID).To(Equal(first.ID))
	})

	It("intersects status and nik filters", func() {
		seed("001", "2024-01-15", permit.StatusApproved)
		seed("001", "2024-01-15", permit.StatusPending)
		seed("002", "2024-01-15", permit.StatusApproved)

		got, err := query.ListByFilter(ctx, permit.Filter{Status: permit.StatusApproved, NIK: "001"})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))

		got, err = query.ListByFilter(ctx, permit.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(3))
	})

	It("includes both range boundaries", func() {
		seed("001", "2024-01-15", permit.StatusPending)
		seed("001", "2024-01-16", permit.StatusPending)
		seed("001", "2024-01-20", permit.StatusPending)

		start, _ := permit.ParseDate("2024-01-15")
		end, _ := permit.ParseDate("2024-01-16")
		got, err := query.ListByDateRange(ctx, start, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(2))

		got, err = query.ListByDateRange(ctx, end, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
	})

	It("returns NotFound for a missing id", func() {
		_, err := query.GetByID(ctx, 99)
		Expect(errors.Is(err, apperrors.ErrPermitNotFound)).To(BeTrue())
	})

	It("summarizes counts with a rounded approval rate", func() {
		repo.counts = permit.StatusCounts{Pending: 1, Approved: 2, Rejected: 0}
		start, _ := permit.ParseDate("2024-01-01")
		end, _ := permit.ParseDate("2024-01-31")

		s, err := query.Summarize(ctx, start, end)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Total).To(Equal(3))
		Expect(s.ApprovalRate).To(Equal(67))
	})

	It("reports a zero rate for an empty range", func() {
		start, _ := permit.ParseDate("2024-01-01")
		s, err := query.Summarize(ctx, start, start)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Total).To(BeZero())
		Expect(s.ApprovalRate).To(BeZero())
	})
})
