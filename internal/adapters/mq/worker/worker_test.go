package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/cascade/internal/adapters/mq/queue"
	worker "github.com/okian/cascade/internal/adapters/mq/worker"
	model "github.com/okian/cascade/internal/domain/model"
	logging "github.com/okian/cascade/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

type mockLoader struct {
	mu     sync.Mutex
	errors map[string]error
	delay  map[string]time.Duration
	calls  int
}

func (m *mockLoader) Load(ctx context.Context, url string) (model.Track, error) {
	m.mu.Lock()
	m.calls++
	err := m.errors[url]
	d := m.delay[url]
	m.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if err != nil {
		return model.Track{}, err
	}
	return model.Track{Source: url, Records: []model.ApplicantRecord{{ID: url, Priority: 1}}}, nil
}

type collector struct {
	mu      sync.Mutex
	results map[int]worker.Result
}

func (c *collector) Deliver(_ context.Context, r worker.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		c.results = make(map[int]worker.Result)
	}
	c.results[r.Index] = r
}

func fill(q *queue.InMemoryQueue, urls ...string) {
	for i, u := range urls {
		if err := q.Enqueue(context.Background(), queue.Job{Index: i, URL: u}); err != nil {
			panic(err)
		}
	}
	_ = q.Close()
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool draining a closed queue", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		loader := &mockLoader{
			errors: map[string]error{"broken.csv": errors.New("disk on fire")},
			delay:  map[string]time.Duration{"a.csv": 20 * time.Millisecond},
		}
		sink := &collector{}
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		fill(q, "a.csv", "b.csv", "broken.csv", "c.csv")

		pool := worker.NewPool(3, q, loader, sink)
		pool.Start(ctx)
		pool.Wait()

		convey.Convey("Then every job should be delivered under its own index", func() {
			convey.So(pool.Size(), convey.ShouldEqual, 3)
			convey.So(loader.calls, convey.ShouldEqual, 4)
			convey.So(len(sink.results), convey.ShouldEqual, 4)
			for i, u := range []string{"a.csv", "b.csv"} {
				convey.So(sink.results[i].Err, convey.ShouldBeNil)
				convey.So(sink.results[i].Track.Source, convey.ShouldEqual, u)
			}
			convey.So(sink.results[3].Track.Source, convey.ShouldEqual, "c.csv")
		})

		convey.Convey("And failures should be delivered as errors", func() {
			res := sink.results[2]
			convey.So(res.Err, convey.ShouldNotBeNil)
			convey.So(res.Err.Error(), convey.ShouldContainSubstring, "broken.csv")
			convey.So(res.Err.Error(), convey.ShouldContainSubstring, "disk on fire")
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, &mockLoader{}, &collector{})

		convey.Convey("Then it should still have workers", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})

	convey.Convey("Given a running pool on an open queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(2, q, &mockLoader{}, &collector{})
		pool.Start(ctx)

		convey.Convey("When shutting it down", func() {
			err := pool.Shutdown(ctx)

			convey.Convey("Then it should stop cleanly and close the queue", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	convey.Convey("Given a single running worker", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, &mockLoader{}, &collector{}, worker.WithName("solo"))
		go w.Run(context.Background())

		convey.Convey("When shutting down twice", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			first := w.Shutdown(ctx)
			second := w.Shutdown(ctx)

			convey.Convey("Then both calls should succeed", func() {
				convey.So(first, convey.ShouldBeNil)
				convey.So(second, convey.ShouldBeNil)
				select {
				case <-w.Done():
				default:
					convey.So(fmt.Errorf("worker still running"), convey.ShouldBeNil)
				}
			})
		})
	})
}
