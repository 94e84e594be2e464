package pushgateway_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
)

var _ = Describe("Pool", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("delivers every queued job before shutdown returns", func() {
		var processed int32
		pool := pushgateway.NewPool(pushgateway.PoolConfig{MaxWorkers: 2, QueueSize: 10},
			func(ctx context.Context, job pushgateway.Job) {
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&processed, 1)
			}, logger)

		for i := 0; i < 10; i++ {
			Expect(pool.Enqueue(pushgateway.Job{UserID: int64(i)})).To(Succeed())
		}

		Expect(pool.Shutdown(context.Background())).To(Succeed())
		Expect(atomic.LoadInt32(&processed)).To(Equal(int32(10)))
	})

	It("rejects jobs when the queue is full", func() {
		release := make(chan struct{})
		started := make(chan struct{}, 1)
		pool := pushgateway.NewPool(pushgateway.PoolConfig{MaxWorkers: 1, QueueSize: 1},
			func(ctx context.Context, job pushgateway.Job) {
				select {
				case started <- struct{}{}:
				default:
				}
				<-release
			}, logger)

		// the single worker takes the first job and blocks
		Expect(pool.Enqueue(pushgateway.Job{UserID: 1})).To(Succeed())
		Eventually(started).Should(Receive())

		// the dispatcher holds the next job while waiting for a free worker
		Expect(pool.Enqueue(pushgateway.Job{UserID: 2})).To(Succeed())
		Eventually(func() error {
			return pool.Enqueue(pushgateway.Job{UserID: 3})
		}).Should(Succeed())

		Expect(pool.Enqueue(pushgateway.Job{UserID: 4})).To(MatchError(pushgateway.ErrQueueFull))

		close(release)
		Expect(pool.Shutdown(context.Background())).To(Succeed())
	})

	It("refuses work after shutdown", func() {
		pool := pushgateway.NewPool(pushgateway.PoolConfig{}, func(context.Context, pushgateway.Job) {}, logger)
		Expect(pool.Shutdown(context.Background())).To(Succeed())

		Expect(pool.Enqueue(pushgateway.Job{UserID: 1})).To(MatchError(pushgateway.ErrPoolClosed))
		Expect(pool.Shutdown(context.Background())).To(Succeed())
	})

	It("cancels in-flight work when the shutdown deadline passes", func() {
		var mu sync.Mutex
		var cancelled bool
		pool := pushgateway.NewPool(pushgateway.PoolConfig{MaxWorkers: 1, QueueSize: 4},
			func(ctx context.Context, job pushgateway.Job) {
				<-ctx.Done()
				mu.Lock()
				cancelled = true
				mu.Unlock()
			}, logger)

		Expect(pool.Enqueue(pushgateway.Job{UserID: 1})).To(Succeed())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		Expect(pool.Shutdown(ctx)).To(MatchError(context.DeadlineExceeded))
		mu.Lock()
		defer mu.Unlock()
		Expect(cancelled).To(BeTrue())
	})
})
